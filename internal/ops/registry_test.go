package ops

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/parallel"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T) *ufunc.Registry {
	t.Helper()
	reg, err := Default()
	require.NoError(t, err)
	return reg
}

// sample returns a small region of dt with a mix of signs, zeros and, for
// floating types, non-finite values.
func sample(dt array.DataType, shift int) *array.Region {
	n := 7
	f := func(i int) float64 { return float64((i+shift)%n) - 3 }
	switch dt {
	case array.Bool:
		v := make([]bool, n)
		for i := range v {
			v[i] = (i+shift)%2 == 0
		}
		return array.Vector(v...)
	case array.Int16:
		return fill[int16](n, func(i int) int16 { return int16(f(i)) })
	case array.Int32:
		return fill[int32](n, func(i int) int32 { return int32(f(i)) })
	case array.Int64:
		return fill[int64](n, func(i int) int64 { return int64(f(i)) })
	case array.Uint16:
		return fill[uint16](n, func(i int) uint16 { return uint16(f(i) + 3) })
	case array.Uint32:
		return fill[uint32](n, func(i int) uint32 { return uint32(f(i) + 3) })
	case array.Uint64:
		return fill[uint64](n, func(i int) uint64 { return uint64(f(i) + 3) })
	case array.Float16:
		return fill[float16.Float16](n, func(i int) float16.Float16 { return float16.Fromfloat32(float32(f(i)) * 0.5) })
	case array.Float32:
		return fill[float32](n, func(i int) float32 {
			if i == n-1 {
				return float32(math.NaN())
			}
			return float32(f(i)) * 0.25
		})
	case array.Float64:
		return fill[float64](n, func(i int) float64 {
			if i == n-1 {
				return math.Inf(-1)
			}
			return f(i) * 0.75
		})
	case array.Complex64:
		return fill[complex64](n, func(i int) complex64 { return complex(float32(f(i)), float32(i%3)) })
	case array.Complex128:
		return fill[complex128](n, func(i int) complex128 { return complex(f(i), -float64(i%2)) })
	}
	panic("unknown dtype")
}

func fill[T array.Element](n int, f func(int) T) *array.Region {
	v := make([]T, n)
	for i := range v {
		v[i] = f(i)
	}
	return array.Vector(v...)
}

// scalarAt extracts element i of r as a Scalar.
func scalarAt(r *array.Region, i int) array.Scalar {
	switch r.DType() {
	case array.Bool:
		return array.NewScalar(array.Data[bool](r)[i])
	case array.Int16:
		return array.NewScalar(array.Data[int16](r)[i])
	case array.Int32:
		return array.NewScalar(array.Data[int32](r)[i])
	case array.Int64:
		return array.NewScalar(array.Data[int64](r)[i])
	case array.Uint16:
		return array.NewScalar(array.Data[uint16](r)[i])
	case array.Uint32:
		return array.NewScalar(array.Data[uint32](r)[i])
	case array.Uint64:
		return array.NewScalar(array.Data[uint64](r)[i])
	case array.Float16:
		return array.NewScalar(array.Data[float16.Float16](r)[i])
	case array.Float32:
		return array.NewScalar(array.Data[float32](r)[i])
	case array.Float64:
		return array.NewScalar(array.Data[float64](r)[i])
	case array.Complex64:
		return array.NewScalar(array.Data[complex64](r)[i])
	default:
		return array.NewScalar(array.Data[complex128](r)[i])
	}
}

// broadcastAt materializes element i of r across r's shape.
func broadcastAt(r *array.Region, i int) *array.Region {
	out, err := array.NewRegion(r.Shape(), r.DType(), array.Host)
	if err != nil {
		panic(err)
	}
	size := r.DType().Size()
	src := r.Bytes()[i*size : (i+1)*size]
	dst := out.Bytes()
	for j := 0; j < r.NumElements(); j++ {
		copy(dst[j*size:], src)
	}
	return out
}

func TestConcreteScenarios(t *testing.T) {
	reg := testRegistry(t)

	t.Run("multiply int32", func(t *testing.T) {
		out, err := reg.Execute(ufunc.TaskKey{Op: ufunc.OpMultiply, DType: array.Int32}, runtime.CPU, runtime.Args{
			Inputs: []*array.Region{array.Vector[int32](1, 2, 3), array.Vector[int32](4, 5, 6)},
		})
		require.NoError(t, err)
		assert.Equal(t, []int32{4, 10, 18}, array.ToSlice[int32](out))
	})

	t.Run("not_equal float with NaN", func(t *testing.T) {
		nan := float32(math.NaN())
		out, err := reg.Execute(ufunc.TaskKey{Op: ufunc.OpNotEqual, DType: array.Float32}, runtime.CPU, runtime.Args{
			Inputs: []*array.Region{array.Vector[float32](1, nan, 3), array.Vector[float32](1, nan, 3)},
		})
		require.NoError(t, err)
		assert.Equal(t, []bool{false, true, false}, array.ToSlice[bool](out))
	})

	t.Run("less_equal scalar uint16", func(t *testing.T) {
		s := array.NewScalar[uint16](5)
		out, err := reg.Execute(ufunc.TaskKey{Op: ufunc.OpLessEqual, DType: array.Uint16, Variant: ufunc.ArrayScalar}, runtime.CPU, runtime.Args{
			Inputs: []*array.Region{array.Vector[uint16](1, 5, 9)},
			Scalar: &s,
		})
		require.NoError(t, err)
		assert.Equal(t, []bool{true, true, false}, array.ToSlice[bool](out))
	})

	t.Run("floor_divide double", func(t *testing.T) {
		out, err := reg.Execute(ufunc.TaskKey{Op: ufunc.OpFloorDivide, DType: array.Float64}, runtime.CPU, runtime.Args{
			Inputs: []*array.Region{array.Vector(7.0), array.Vector(2.0)},
		})
		require.NoError(t, err)
		assert.Equal(t, []float64{3}, array.ToSlice[float64](out))
	})
}

func TestRegistrationCompleteness(t *testing.T) {
	reg := testRegistry(t)
	require.True(t, reg.Frozen())

	defs := Definitions()
	require.Len(t, defs, ufunc.NumOpCodes, "every operation code has a definition")

	want := 0
	for _, def := range defs {
		op, ok := reg.Operator(def.Descriptor.Code)
		require.True(t, ok, def.Descriptor.Code.String())
		for _, dt := range array.AllDataTypes() {
			for _, v := range []ufunc.Variant{ufunc.ArrayArray, ufunc.ArrayScalar} {
				key := ufunc.TaskKey{Op: op.Code(), DType: dt, Variant: v}
				_, err := reg.Lookup(key)
				declared := op.Supports(dt) && op.HasVariant(v)
				if declared {
					want++
					assert.NoError(t, err, key.String())
				} else {
					assert.Error(t, err, key.String())
				}
			}
		}
	}
	assert.Equal(t, want, reg.Len(), "no extras")
}

func TestTypeExclusion(t *testing.T) {
	reg := testRegistry(t)
	for _, op := range []ufunc.OpCode{ufunc.OpFloor, ufunc.OpFloorDivide, ufunc.OpCeil, ufunc.OpRemainder} {
		for _, dt := range []array.DataType{array.Complex64, array.Complex128, array.Bool} {
			_, err := reg.Lookup(ufunc.TaskKey{Op: op, DType: dt})
			assert.True(t, ufunc.IsUnsupportedType(err), "%s on %s: %v", op, dt, err)
		}
	}
	for _, op := range []ufunc.OpCode{ufunc.OpLess, ufunc.OpMaximum, ufunc.OpAbsolute} {
		_, err := reg.Lookup(ufunc.TaskKey{Op: op, DType: array.Complex128})
		assert.True(t, ufunc.IsUnsupportedType(err), "%s on complex128", op)
	}
	_, err := reg.Lookup(ufunc.TaskKey{Op: ufunc.OpSubtract, DType: array.Bool})
	assert.True(t, ufunc.IsUnsupportedType(err))
}

func TestResultTypeRule(t *testing.T) {
	reg := testRegistry(t)
	for _, task := range reg.Tasks() {
		op, _ := reg.Operator(task.Key().Op)
		if op.Result() == ufunc.BoolResult {
			assert.Equal(t, array.Bool, task.ResultType(), task.Name())
		} else {
			assert.Equal(t, task.Key().DType, task.ResultType(), task.Name())
		}
	}
}

// Every task keeps the input shape, produces its declared result type, is
// deterministic across processors, and its scalar variant matches the array
// variant against a materialized broadcast.
func TestAllTasksProperties(t *testing.T) {
	reg := testRegistry(t)
	for _, task := range reg.Tasks() {
		key := task.Key()
		t.Run(task.Name(), func(t *testing.T) {
			op, _ := reg.Operator(key.Op)
			a := sample(key.DType, 0)
			b := sample(key.DType, 3)

			var args runtime.Args
			switch {
			case op.Arity() == ufunc.ArityUnary:
				args.Inputs = []*array.Region{a}
			case key.Variant == ufunc.ArrayArray:
				args.Inputs = []*array.Region{a, b}
			default:
				s := scalarAt(b, 2)
				args.Inputs = []*array.Region{a}
				args.Scalar = &s
			}

			first, err := task.Run(runtime.CPU, args)
			require.NoError(t, err)
			assert.Equal(t, a.Shape(), first.Shape())
			assert.Equal(t, task.ResultType(), first.DType())

			again, err := task.Run(runtime.OMP, args)
			require.NoError(t, err)
			assert.Equal(t, first.Bytes(), again.Bytes(), "bit-identical re-execution")

			if key.Variant == ufunc.ArrayScalar {
				viaArray, err := reg.Execute(ufunc.TaskKey{Op: key.Op, DType: key.DType}, runtime.CPU, runtime.Args{
					Inputs: []*array.Region{a, broadcastAt(b, 2)},
				})
				require.NoError(t, err)
				assert.Equal(t, viaArray.Bytes(), first.Bytes(), "scalar broadcast equivalence")
			}
		})
	}
}

func TestNewRegistryWithOptions(t *testing.T) {
	reg, err := NewRegistry(
		WithParallel(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}),
		WithLogger(quiet()),
	)
	require.NoError(t, err)
	def := testRegistry(t)
	assert.Equal(t, def.Len(), reg.Len())
	assert.NotSame(t, def, reg)
	assert.Same(t, def, MustDefault())
}

type stubAccelerator struct {
	keys []ufunc.TaskKey
}

func (s stubAccelerator) Name() string { return "stub" }

func (s stubAccelerator) Attach(reg *ufunc.Registry) (int, error) {
	for _, k := range s.keys {
		err := reg.Attach(k, runtime.GPU, func(args runtime.Args) (*array.Region, error) {
			return args.Inputs[0], nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(s.keys), nil
}

func TestAccelerator(t *testing.T) {
	key := ufunc.TaskKey{Op: ufunc.OpNegative, DType: array.Float32}
	reg, err := NewRegistry(WithLogger(quiet()), WithAccelerator(stubAccelerator{keys: []ufunc.TaskKey{key}}))
	require.NoError(t, err)

	task, err := reg.Lookup(key)
	require.NoError(t, err)
	assert.True(t, task.Procs().Has(runtime.GPU))

	_, err = NewRegistry(WithLogger(quiet()), WithAccelerator(stubAccelerator{keys: []ufunc.TaskKey{{Op: ufunc.OpFloor, DType: array.Complex64}}}))
	assert.True(t, ufunc.IsUnregisteredTask(err))
}

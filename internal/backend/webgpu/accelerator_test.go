package webgpu

import (
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/ops"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// hostExecutor evaluates the add and negative kernels on the host and
// records which kernels ran. With flush set it replaces every non-finite
// result with 0, like a device that ignores IEEE special values.
type hostExecutor struct {
	ran   []string
	fail  bool
	flush bool
}

func (h *hostExecutor) finish(out []float32) []byte {
	if h.flush {
		for i, v := range out {
			if !finite(v) {
				out[i] = 0
			}
		}
	}
	return bytesOf(out)
}

func (h *hostExecutor) adapterName() string { return "host" }

func floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func bytesOf(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func (h *hostExecutor) runBinary(name, code string, a, b []byte, n int) ([]byte, error) {
	h.ran = append(h.ran, name)
	if h.fail {
		return nil, errors.New("device lost")
	}
	x, y := floats(a), floats(b)
	out := make([]float32, n)
	for i := range out {
		out[i] = x[i] + y[i]
	}
	return h.finish(out), nil
}

func (h *hostExecutor) runUnary(name, code string, in []byte, n int) ([]byte, error) {
	h.ran = append(h.ran, name)
	x := floats(in)
	out := make([]float32, n)
	for i := range out {
		out[i] = -x[i]
	}
	return h.finish(out), nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKernelSource(t *testing.T) {
	for _, k := range binaryKernels {
		src := k.Source(ufunc.ArityBinary)
		assert.Contains(t, src, "result[idx] = "+k.Expr+";")
		assert.Contains(t, src, "@workgroup_size(256)")
		assert.Contains(t, src, "@binding(3) var<uniform> params")
	}
	for _, k := range unaryKernels {
		src := k.Source(ufunc.ArityUnary)
		assert.Contains(t, src, k.Expr)
		assert.Contains(t, src, "@binding(2) var<uniform> params")
	}
	assert.Equal(t, "f32_add", binaryKernels[0].Name())
	assert.Len(t, Kernels(), len(binaryKernels)+len(unaryKernels))
}

func TestNoKernelForNaNProducingOps(t *testing.T) {
	hostOnly := []ufunc.OpCode{
		ufunc.OpMaximum, ufunc.OpMinimum, ufunc.OpDivide,
		ufunc.OpSqrt, ufunc.OpLog, ufunc.OpExp, ufunc.OpTanh,
	}
	for _, k := range Kernels() {
		assert.NotContains(t, hostOnly, k.Op)
		assert.False(t, strings.Contains(k.Expr, "max("))
		assert.True(t, (k.Unary == nil) != (k.Binary == nil), k.Name())
	}
}

func TestTrusted(t *testing.T) {
	add, mul := binaryKernels[0], binaryKernels[2]
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())

	assert.True(t, add.Trusted(1, 2))
	assert.False(t, add.Trusted(nan, 2))
	assert.False(t, add.Trusted(1, inf))
	assert.False(t, add.Trusted(3e38, 3e38))
	assert.True(t, mul.Trusted(1e19, 1e19))
	assert.False(t, mul.Trusted(1e20, 1e20))
	assert.True(t, unaryKernels[0].Trusted(5, 0))
	assert.False(t, unaryKernels[0].Trusted(-inf, 0))
}

func TestAttach(t *testing.T) {
	exec := &hostExecutor{}
	accel := &Accelerator{exec: exec, logger: quiet()}
	reg, err := ops.NewRegistry(ops.WithLogger(quiet()), ops.WithAccelerator(accel))
	require.NoError(t, err)

	for _, k := range Kernels() {
		task, err := reg.Lookup(ufunc.TaskKey{Op: k.Op, DType: array.Float32})
		require.NoError(t, err)
		assert.True(t, task.Procs().Has(runtime.GPU), k.Op.String())
	}
	scalar, err := reg.Lookup(ufunc.TaskKey{Op: ufunc.OpAdd, DType: array.Float32, Variant: ufunc.ArrayScalar})
	require.NoError(t, err)
	assert.False(t, scalar.Procs().Has(runtime.GPU))

	out, err := reg.Execute(ufunc.TaskKey{Op: ufunc.OpAdd, DType: array.Float32}, runtime.GPU, runtime.Args{
		Inputs: []*array.Region{array.Vector[float32](1, 2), array.Vector[float32](3, 4)},
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 6}, array.ToSlice[float32](out))
	assert.Equal(t, array.GPU, out.Device())
	assert.Equal(t, []string{"f32_add"}, exec.ran)
}

func TestBodyValidation(t *testing.T) {
	exec := &hostExecutor{}
	accel := &Accelerator{exec: exec, logger: quiet()}
	key := ufunc.TaskKey{Op: ufunc.OpAdd, DType: array.Float32}
	body := accel.binaryBody(key, binaryKernels[0])

	_, err := body(runtime.Args{Inputs: []*array.Region{array.Vector[float32](1)}})
	assert.True(t, ufunc.IsInvalidArgument(err))

	s := array.NewScalar[float32](1)
	_, err = body(runtime.Args{Inputs: []*array.Region{array.Vector[float32](1), array.Vector[float32](1)}, Scalar: &s})
	assert.True(t, ufunc.IsInvalidArgument(err))

	_, err = body(runtime.Args{Inputs: []*array.Region{array.Vector[float32](1), nil}})
	assert.True(t, ufunc.IsInvalidArgument(err))

	_, err = body(runtime.Args{Inputs: []*array.Region{array.Vector[float32](1, 2), array.Vector[float32](1)}})
	assert.True(t, ufunc.IsShapeMismatch(err))
	assert.Equal(t, ufunc.ErrCodeShapeMismatch, ufunc.CodeOf(err))

	_, err = body(runtime.Args{Inputs: []*array.Region{array.Vector(1.0), array.Vector(1.0)}})
	assert.True(t, ufunc.IsTypeMismatch(err))

	x := array.Vector[float32](1, 2)
	_, err = body(runtime.Args{Inputs: []*array.Region{x, x}, Output: array.Vector[float32](1)})
	assert.True(t, ufunc.IsShapeMismatch(err))
	_, err = body(runtime.Args{Inputs: []*array.Region{x, x}, Output: array.Vector(1.0, 2.0)})
	assert.True(t, ufunc.IsTypeMismatch(err))
	assert.Empty(t, exec.ran, "invalid launches never reach the device")

	exec.fail = true
	_, err = body(runtime.Args{Inputs: []*array.Region{array.Vector[float32](1), array.Vector[float32](1)}})
	assert.ErrorContains(t, err, "device lost")
}

func TestUnaryBodyWritesOutput(t *testing.T) {
	accel := &Accelerator{exec: &hostExecutor{}, logger: quiet()}
	key := ufunc.TaskKey{Op: ufunc.OpNegative, DType: array.Float32}
	body := accel.unaryBody(key, unaryKernels[0])

	x := array.Vector[float32](1, -2, 3)
	out, err := body(runtime.Args{Inputs: []*array.Region{x}, Output: x})
	require.NoError(t, err)
	assert.Same(t, x, out)
	assert.Equal(t, []float32{-1, 2, -3}, array.ToSlice[float32](x))

	_, err = body(runtime.Args{Inputs: []*array.Region{x}, Output: array.Vector[float32](1)})
	assert.True(t, ufunc.IsShapeMismatch(err))

	_, err = body(runtime.Args{Inputs: []*array.Region{array.Vector[int32](1)}})
	assert.True(t, ufunc.IsTypeMismatch(err))
}

func TestGPUErrorsCarryCodes(t *testing.T) {
	accel := &Accelerator{exec: &hostExecutor{}, logger: quiet()}
	reg, err := ops.NewRegistry(ops.WithLogger(quiet()), ops.WithAccelerator(accel))
	require.NoError(t, err)
	key := ufunc.TaskKey{Op: ufunc.OpAdd, DType: array.Float32}

	for _, proc := range []runtime.ProcessorKind{runtime.CPU, runtime.GPU} {
		_, err := reg.Execute(key, proc, runtime.Args{
			Inputs: []*array.Region{array.Vector[float32](1, 2), array.Vector[float32](1)},
		})
		assert.True(t, ufunc.IsShapeMismatch(err), proc.String())
		assert.Equal(t, ufunc.ErrCodeShapeMismatch, ufunc.CodeOf(err), proc.String())

		_, err = reg.Execute(key, proc, runtime.Args{
			Inputs: []*array.Region{array.Vector[float32](1), array.Vector(1.0)},
		})
		assert.True(t, ufunc.IsTypeMismatch(err), proc.String())
	}
}

func TestNonFiniteRecomputedOnHost(t *testing.T) {
	exec := &hostExecutor{flush: true}
	accel := &Accelerator{exec: exec, logger: quiet()}
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())

	add := accel.binaryBody(ufunc.TaskKey{Op: ufunc.OpAdd, DType: array.Float32}, binaryKernels[0])
	out, err := add(runtime.Args{Inputs: []*array.Region{
		array.Vector(nan, inf, 3e38, 1),
		array.Vector[float32](1, 1, 3e38, 2),
	}})
	require.NoError(t, err)
	got := array.ToSlice[float32](out)
	assert.True(t, math.IsNaN(float64(got[0])))
	assert.Equal(t, []float32{inf, inf, 3}, got[1:])

	neg := accel.unaryBody(ufunc.TaskKey{Op: ufunc.OpNegative, DType: array.Float32}, unaryKernels[0])
	x := array.Vector(inf, 1, nan)
	out, err = neg(runtime.Args{Inputs: []*array.Region{x}, Output: x})
	require.NoError(t, err)
	assert.Same(t, x, out)
	got = array.ToSlice[float32](x)
	assert.Equal(t, []float32{-inf, -1}, got[:2])
	assert.True(t, math.IsNaN(float64(got[2])))
}

func TestNewWithoutDevice(t *testing.T) {
	if IsAvailable() {
		t.Skip("WebGPU adapter present")
	}
	_, err := New(quiet())
	assert.ErrorIs(t, err, ErrUnavailable)
}

package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

func TestIntegerDivision(t *testing.T) {
	assert.Equal(t, int32(-3), divideInt[int32](-7, 2))
	assert.Equal(t, int32(0), divideInt[int32](5, 0))
	assert.Equal(t, uint16(0), divideInt[uint16](5, 0))

	tests := []struct {
		a, b, floor, rem int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
		{6, 3, 2, 0},
		{-6, 3, -2, 0},
		{5, 0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.floor, floorDivideSigned(tt.a, tt.b), "%d // %d", tt.a, tt.b)
		assert.Equal(t, tt.rem, remainderSigned(tt.a, tt.b), "%d %% %d", tt.a, tt.b)
	}
	assert.Equal(t, uint32(1), remainderUnsigned[uint32](7, 3))
	assert.Equal(t, uint32(0), remainderUnsigned[uint32](7, 0))
}

func TestFloatFloorDivideAndRemainder(t *testing.T) {
	assert.Equal(t, 3.0, floorDivideFloat(7.0, 2.0))
	assert.Equal(t, -4.0, floorDivideFloat(-7.0, 2.0))
	assert.Equal(t, 1.0, remainderFloat(-7.0, 2.0))
	assert.Equal(t, -1.0, remainderFloat(7.0, -2.0))
	assert.True(t, math.IsInf(floorDivideFloat(1.0, 0.0), 1))
	assert.True(t, math.IsNaN(remainderFloat(1.0, 0.0)))
}

func TestIntegerPower(t *testing.T) {
	assert.Equal(t, int32(1024), powerSigned[int32](2, 10))
	assert.Equal(t, int32(1), powerSigned[int32](0, 0))
	assert.Equal(t, int32(0), powerSigned[int32](2, -1))
	assert.Equal(t, int32(1), powerSigned[int32](1, -5))
	assert.Equal(t, int32(-1), powerSigned[int32](-1, -3))
	assert.Equal(t, int32(1), powerSigned[int32](-1, -4))
	assert.Equal(t, int16(0), powerSigned[int16](2, 16), "wraps")
	assert.Equal(t, uint16(81), powerUnsigned[uint16](3, 4))
}

func TestMaximumMinimum(t *testing.T) {
	nan := math.NaN()
	assert.True(t, math.IsNaN(maximumOf(nan, 1.0)))
	assert.True(t, math.IsNaN(maximumOf(1.0, nan)))
	assert.True(t, math.IsNaN(minimumOf(nan, 1.0)))
	assert.Equal(t, 2.0, maximumOf(1.0, 2.0))
	assert.Equal(t, int16(-3), minimumOf[int16](-3, 4))

	h := func(f float32) float16.Float16 { return float16.Fromfloat32(f) }
	assert.True(t, maximumHalf(float16.NaN(), h(1)).IsNaN())
	assert.True(t, minimumHalf(h(1), float16.NaN()).IsNaN())
	assert.Equal(t, float32(2), maximumHalf(h(1), h(2)).Float32())
	assert.Equal(t, float32(-1), minimumHalf(h(-1), h(2)).Float32())
}

func TestSaturate(t *testing.T) {
	lo, hi := intLimits[int16]()
	assert.Equal(t, int16(math.MinInt16), lo)
	assert.Equal(t, int16(0), saturate(math.NaN(), lo, hi))
	assert.Equal(t, hi, saturate(math.Inf(1), lo, hi))
	assert.Equal(t, lo, saturate(-1e9, lo, hi))
	assert.Equal(t, int16(2), saturate(2.7, lo, hi))

	ulo, uhi := intLimits[uint32]()
	assert.Equal(t, uint32(0), saturate(-4, ulo, uhi))

	assert.Equal(t, int32(math.MinInt32), intMath[int32](math.Log)(0), "log(0) is -Inf")
}

func TestHalfPrecision(t *testing.T) {
	h := func(f float32) float16.Float16 { return float16.Fromfloat32(f) }
	assert.Equal(t, float32(3.5), halfBinary(addOf[float32])(h(1.5), h(2)).Float32())
	assert.Equal(t, float32(2), absHalf(h(-2)).Float32())
	assert.Equal(t, float32(-2), negateHalf(h(2)).Float32())
	assert.True(t, absHalf(float16.NaN()).IsNaN())
	assert.False(t, halfCompare(equalOf[float32])(float16.NaN(), float16.NaN()))
	assert.True(t, halfCompare(equalOf[float32])(h(0), float16.Frombits(0x8000)), "signed zeros compare equal")
	assert.True(t, truthHalf(float16.NaN()))
	assert.False(t, truthHalf(float16.Frombits(0x8000)))
}

func TestBoolSemantics(t *testing.T) {
	reg := testRegistry(t)
	a := array.Vector(false, false, true, true)
	b := array.Vector(false, true, false, true)
	run := func(op ufunc.OpCode) []bool {
		out, err := reg.Dispatch(op, runtime.CPU, runtime.Args{Inputs: []*array.Region{a, b}})
		require.NoError(t, err)
		return array.ToSlice[bool](out)
	}
	assert.Equal(t, []bool{false, true, true, true}, run(ufunc.OpAdd))
	assert.Equal(t, []bool{false, false, false, true}, run(ufunc.OpMultiply))
	assert.Equal(t, []bool{false, true, true, true}, run(ufunc.OpMaximum))
	assert.Equal(t, []bool{false, false, false, true}, run(ufunc.OpMinimum))
	assert.Equal(t, []bool{false, true, false, false}, run(ufunc.OpLess))
	assert.Equal(t, []bool{true, false, true, true}, run(ufunc.OpGreaterEqual))
	assert.Equal(t, []bool{false, true, true, false}, run(ufunc.OpLogicalXor))

	out, err := reg.Dispatch(ufunc.OpCos, runtime.CPU, runtime.Args{Inputs: []*array.Region{a}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, true}, array.ToSlice[bool](out), "cos(0)=1 and cos(1)!=0")
}

func TestLogicalOnNumbers(t *testing.T) {
	reg := testRegistry(t)
	nan := math.NaN()
	out, err := reg.Dispatch(ufunc.OpLogicalAnd, runtime.CPU, runtime.Args{
		Inputs: []*array.Region{array.Vector(0.0, 1.0, nan, -2.0), array.Vector(1.0, 1.0, 1.0, 0.0)},
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, false}, array.ToSlice[bool](out))

	out, err = reg.Dispatch(ufunc.OpLogicalNot, runtime.CPU, runtime.Args{
		Inputs: []*array.Region{array.Vector[complex64](0, 1i, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, array.ToSlice[bool](out))
}

func TestTranscendentalOnIntegers(t *testing.T) {
	reg := testRegistry(t)
	out, err := reg.Dispatch(ufunc.OpSqrt, runtime.CPU, runtime.Args{
		Inputs: []*array.Region{array.Vector[int32](0, 4, 10, -1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 2, 3, 0}, array.ToSlice[int32](out))

	out, err = reg.Dispatch(ufunc.OpExp, runtime.CPU, runtime.Args{
		Inputs: []*array.Region{array.Vector[uint16](0, 1, 100)},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, math.MaxUint16}, array.ToSlice[uint16](out))

	out, err = reg.Dispatch(ufunc.OpFloor, runtime.CPU, runtime.Args{
		Inputs: []*array.Region{array.Vector[int64](-3, 7)},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{-3, 7}, array.ToSlice[int64](out))
}

func TestInPlaceArccos(t *testing.T) {
	reg := testRegistry(t)
	a := array.Vector(1.0, 0.0, -1.0)
	out, err := reg.Dispatch(ufunc.OpArccos, runtime.CPU, runtime.Args{
		Inputs: []*array.Region{a},
		Output: a,
	})
	require.NoError(t, err)
	assert.Same(t, a, out)
	got := array.ToSlice[float64](a)
	assert.InDelta(t, 0, got[0], 1e-12)
	assert.InDelta(t, math.Pi/2, got[1], 1e-12)
	assert.InDelta(t, math.Pi, got[2], 1e-12)
}

func TestComplexArithmetic(t *testing.T) {
	reg := testRegistry(t)
	out, err := reg.Dispatch(ufunc.OpMultiply, runtime.OMP, runtime.Args{
		Inputs: []*array.Region{array.Vector[complex128](1+2i, 3), array.Vector[complex128](1i, 2-1i)},
	})
	require.NoError(t, err)
	assert.Equal(t, []complex128{-2 + 1i, 6 - 3i}, array.ToSlice[complex128](out))

	out, err = reg.Dispatch(ufunc.OpEqual, runtime.CPU, runtime.Args{
		Inputs: []*array.Region{array.Vector[complex64](1+1i, 2), array.Vector[complex64](1+1i, 2i)},
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, array.ToSlice[bool](out))
}

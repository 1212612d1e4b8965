package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/parallel"
)

func backends() []*CPUBackend {
	return []*CPUBackend{
		New(),
		NewParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}),
	}
}

func TestBackendName(t *testing.T) {
	assert.Equal(t, "CPU", New().Name())
	assert.Equal(t, "OMP", NewParallel(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}).Name())
	assert.Equal(t, array.Host, New().Device())
}

func TestMap(t *testing.T) {
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			src, err := array.FromSlice([]float64{0, 1, 4, 9, 16, 25, -1}, array.Shape{7}, array.Host)
			require.NoError(t, err)
			dst := array.Zeros[float64](src.Shape(), array.Host)

			Map(be, dst, src, math.Sqrt)

			got := array.ToSlice[float64](dst)
			assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, got[:6])
			assert.True(t, math.IsNaN(got[6]))
		})
	}
}

func TestMapInPlace(t *testing.T) {
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			r := array.Vector[int32](1, -2, 3, -4, 5)
			Map(be, r, r, func(v int32) int32 { return -v })
			assert.Equal(t, []int32{-1, 2, -3, 4, -5}, array.ToSlice[int32](r))
		})
	}
}

func TestZipBoolResult(t *testing.T) {
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			a := array.Vector[uint16](1, 2, 3, 4, 5)
			b := array.Vector[uint16](1, 0, 3, 0, 5)
			dst := array.Zeros[bool](a.Shape(), array.Host)

			Zip(be, dst, a, b, func(x, y uint16) bool { return x != y })

			assert.Equal(t, []bool{false, true, false, true, false}, array.ToSlice[bool](dst))
		})
	}
}

func TestZipScalar(t *testing.T) {
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			a := array.Vector[int64](1, 5, 3, 7, 5)
			dst := array.Zeros[bool](a.Shape(), array.Host)

			ZipScalar(be, dst, a, 5, func(x, y int64) bool { return x <= y })

			assert.Equal(t, []bool{true, true, true, false, true}, array.ToSlice[bool](dst))
		})
	}
}

func TestZipEmpty(t *testing.T) {
	a := array.Zeros[complex64](array.Shape{0}, array.Host)
	dst := array.Zeros[complex64](array.Shape{0}, array.Host)
	called := false
	Zip(New(), dst, a, a, func(x, y complex64) complex64 {
		called = true
		return x + y
	})
	assert.False(t, called)
}

func TestSliceLengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		ZipSlice(make([]float32, 2), []float32{1, 2}, []float32{1}, func(x, y float32) float32 { return x + y }, parallel.Sequential())
	})
}

func TestParallelMatchesSequential(t *testing.T) {
	n := 10_000
	a := make([]float32, n)
	b := make([]float32, n)
	for i := range a {
		a[i] = float32(i) * 0.25
		b[i] = float32(n-i) * 0.5
	}
	seq := make([]float32, n)
	par := make([]float32, n)
	mul := func(x, y float32) float32 { return x * y }

	ZipSlice(seq, a, b, mul, parallel.Sequential())
	ZipSlice(par, a, b, mul, parallel.Config{Enabled: true, NumWorkers: 8, MinChunkSize: 16})

	assert.Equal(t, seq, par)
}

package cpu

import (
	"fmt"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/parallel"
)

// Map writes f(src[i]) into dst[i] for every element.
// dst may alias src for in-place execution.
func Map[T, R array.Element](cpu *CPUBackend, dst, src *array.Region, f func(T) R) {
	MapSlice(array.Data[R](dst), array.Data[T](src), f, cpu.par)
}

// Zip writes f(a[i], b[i]) into dst[i] for every element.
// Shapes must already match; dst may alias either input.
func Zip[T, R array.Element](cpu *CPUBackend, dst, a, b *array.Region, f func(T, T) R) {
	ZipSlice(array.Data[R](dst), array.Data[T](a), array.Data[T](b), f, cpu.par)
}

// ZipScalar writes f(a[i], s) into dst[i] for every element. The scalar is
// held constant; no broadcast array is materialized.
func ZipScalar[T, R array.Element](cpu *CPUBackend, dst, a *array.Region, s T, f func(T, T) R) {
	ZipScalarSlice(array.Data[R](dst), array.Data[T](a), s, f, cpu.par)
}

// MapSlice is the slice form of Map.
func MapSlice[T, R any](dst []R, src []T, f func(T) R, cfg parallel.Config) {
	checkLen("map", len(dst), len(src))
	parallel.ForRange(len(src), func(lo, hi int) {
		d, s := dst[lo:hi], src[lo:hi]
		for i := range s {
			d[i] = f(s[i])
		}
	}, cfg)
}

// ZipSlice is the slice form of Zip.
func ZipSlice[T, R any](dst []R, a, b []T, f func(T, T) R, cfg parallel.Config) {
	checkLen("zip", len(dst), len(a))
	checkLen("zip", len(a), len(b))
	parallel.ForRange(len(a), func(lo, hi int) {
		d, x, y := dst[lo:hi], a[lo:hi], b[lo:hi]
		for i := range x {
			d[i] = f(x[i], y[i])
		}
	}, cfg)
}

// ZipScalarSlice is the slice form of ZipScalar.
func ZipScalarSlice[T, R any](dst []R, a []T, s T, f func(T, T) R, cfg parallel.Config) {
	checkLen("zip scalar", len(dst), len(a))
	parallel.ForRange(len(a), func(lo, hi int) {
		d, x := dst[lo:hi], a[lo:hi]
		for i := range x {
			d[i] = f(x[i], s)
		}
	}, cfg)
}

func checkLen(op string, want, got int) {
	if want != got {
		panic(fmt.Sprintf("%s: length mismatch %d vs %d", op, want, got))
	}
}

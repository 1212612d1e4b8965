package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/x448/float16"

	"github.com/born-ml/elementwise/internal/array"
)

// Values are written as strings so that YAML and command-line input share
// one parser. Floats accept NaN, Inf and -Inf; complex values use Go syntax
// such as 1+2i.

func parseAll[T array.Element](values []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, len(values))
	for i, s := range values {
		v, err := parse(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("value %d %q: %w", i, s, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseSigned[T int16 | int32 | int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseInt(s, 10, bits)
		return T(v), err
	}
}

func parseUnsigned[T uint16 | uint32 | uint64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseUint(s, 10, bits)
		return T(v), err
	}
}

func parseFloat[T float32 | float64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseFloat(s, bits)
		return T(v), err
	}
}

func parseComplex[T complex64 | complex128](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseComplex(s, bits)
		return T(v), err
	}
}

func parseHalf(s string) (float16.Float16, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float16.Fromfloat32(float32(v)), err
}

func build[T array.Element](values []string, shape array.Shape, parse func(string) (T, error)) (*array.Region, error) {
	data, err := parseAll(values, parse)
	if err != nil {
		return nil, err
	}
	return array.FromSlice(data, shape, array.Host)
}

// ParseRegion builds a host region of dt from values. A nil shape means a
// vector of len(values).
func ParseRegion(dt array.DataType, shape array.Shape, values []string) (*array.Region, error) {
	if shape == nil {
		shape = array.Shape{len(values)}
	}
	switch dt {
	case array.Bool:
		return build(values, shape, strconv.ParseBool)
	case array.Int16:
		return build(values, shape, parseSigned[int16](16))
	case array.Int32:
		return build(values, shape, parseSigned[int32](32))
	case array.Int64:
		return build(values, shape, parseSigned[int64](64))
	case array.Uint16:
		return build(values, shape, parseUnsigned[uint16](16))
	case array.Uint32:
		return build(values, shape, parseUnsigned[uint32](32))
	case array.Uint64:
		return build(values, shape, parseUnsigned[uint64](64))
	case array.Float16:
		return build(values, shape, parseHalf)
	case array.Float32:
		return build(values, shape, parseFloat[float32](32))
	case array.Float64:
		return build(values, shape, parseFloat[float64](64))
	case array.Complex64:
		return build(values, shape, parseComplex[complex64](64))
	case array.Complex128:
		return build(values, shape, parseComplex[complex128](128))
	default:
		return nil, fmt.Errorf("unknown data type %s", dt)
	}
}

// ParseScalar parses one value of dt.
func ParseScalar(dt array.DataType, s string) (array.Scalar, error) {
	r, err := ParseRegion(dt, nil, []string{s})
	if err != nil {
		return array.Scalar{}, err
	}
	return scalarOf(r), nil
}

func scalarOf(r *array.Region) array.Scalar {
	switch r.DType() {
	case array.Bool:
		return array.NewScalar(array.Data[bool](r)[0])
	case array.Int16:
		return array.NewScalar(array.Data[int16](r)[0])
	case array.Int32:
		return array.NewScalar(array.Data[int32](r)[0])
	case array.Int64:
		return array.NewScalar(array.Data[int64](r)[0])
	case array.Uint16:
		return array.NewScalar(array.Data[uint16](r)[0])
	case array.Uint32:
		return array.NewScalar(array.Data[uint32](r)[0])
	case array.Uint64:
		return array.NewScalar(array.Data[uint64](r)[0])
	case array.Float16:
		return array.NewScalar(array.Data[float16.Float16](r)[0])
	case array.Float32:
		return array.NewScalar(array.Data[float32](r)[0])
	case array.Float64:
		return array.NewScalar(array.Data[float64](r)[0])
	case array.Complex64:
		return array.NewScalar(array.Data[complex64](r)[0])
	default:
		return array.NewScalar(array.Data[complex128](r)[0])
	}
}

func formatAll[T array.Element](r *array.Region, f func(T) string) []string {
	data := array.Data[T](r)
	out := make([]string, len(data))
	for i, v := range data {
		out[i] = f(v)
	}
	return out
}

func formatInt[T int16 | int32 | int64](v T) string     { return strconv.FormatInt(int64(v), 10) }
func formatUint[T uint16 | uint32 | uint64](v T) string { return strconv.FormatUint(uint64(v), 10) }

// FormatRegion renders every element of r in the syntax ParseRegion reads.
func FormatRegion(r *array.Region) []string {
	switch r.DType() {
	case array.Bool:
		return formatAll(r, strconv.FormatBool)
	case array.Int16:
		return formatAll(r, formatInt[int16])
	case array.Int32:
		return formatAll(r, formatInt[int32])
	case array.Int64:
		return formatAll(r, formatInt[int64])
	case array.Uint16:
		return formatAll(r, formatUint[uint16])
	case array.Uint32:
		return formatAll(r, formatUint[uint32])
	case array.Uint64:
		return formatAll(r, formatUint[uint64])
	case array.Float16:
		return formatAll(r, func(v float16.Float16) string {
			return strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32)
		})
	case array.Float32:
		return formatAll(r, func(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) })
	case array.Float64:
		return formatAll(r, func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) })
	case array.Complex64:
		return formatAll(r, func(v complex64) string { return strconv.FormatComplex(complex128(v), 'g', -1, 64) })
	default:
		return formatAll(r, func(v complex128) string { return strconv.FormatComplex(v, 'g', -1, 128) })
	}
}

package ops

import (
	"math"

	"github.com/x448/float16"
)

// Element families. Half precision is not in any of them: it is stored as
// float16.Float16 and computed through float32.
type (
	signed interface {
		int16 | int32 | int64
	}
	unsigned interface {
		uint16 | uint32 | uint64
	}
	integer interface {
		signed | unsigned
	}
	float interface {
		float32 | float64
	}
	realNumber interface {
		integer | float
	}
	complexNumber interface {
		complex64 | complex128
	}
	number interface {
		realNumber | complexNumber
	}
)

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// intLimits returns the range of T.
func intLimits[T integer]() (lo, hi T) {
	var l, h any
	switch any(lo).(type) {
	case int16:
		l, h = int16(math.MinInt16), int16(math.MaxInt16)
	case int32:
		l, h = int32(math.MinInt32), int32(math.MaxInt32)
	case int64:
		l, h = int64(math.MinInt64), int64(math.MaxInt64)
	case uint16:
		l, h = uint16(0), uint16(math.MaxUint16)
	case uint32:
		l, h = uint32(0), uint32(math.MaxUint32)
	case uint64:
		l, h = uint64(0), uint64(math.MaxUint64)
	}
	return l.(T), h.(T)
}

// saturate converts a float64 result back to an integer type. NaN maps to
// zero; values beyond the range clamp to its ends.
func saturate[T integer](v float64, lo, hi T) T {
	switch {
	case v != v:
		return 0
	case v <= float64(lo):
		return lo
	case v >= float64(hi):
		return hi
	default:
		return T(v)
	}
}

// Unary math adapters. f and c are float64 and complex128 functions from
// the math and math/cmplx packages.

func boolMath(f func(float64) float64) func(bool) bool {
	return func(x bool) bool { return f(b2f(x)) != 0 }
}

func intMath[T integer](f func(float64) float64) func(T) T {
	lo, hi := intLimits[T]()
	return func(x T) T { return saturate(f(float64(x)), lo, hi) }
}

func floatMath[T float](f func(float64) float64) func(T) T {
	return func(x T) T { return T(f(float64(x))) }
}

func halfMath(f func(float64) float64) func(float16.Float16) float16.Float16 {
	return func(x float16.Float16) float16.Float16 {
		return float16.Fromfloat32(float32(f(float64(x.Float32()))))
	}
}

func complexMath[T complexNumber](c func(complex128) complex128) func(T) T {
	return func(x T) T { return T(c(complex128(x))) }
}

// Half precision adapters, computed through float32.

func halfBinary(f func(a, b float32) float32) func(a, b float16.Float16) float16.Float16 {
	return func(a, b float16.Float16) float16.Float16 {
		return float16.Fromfloat32(f(a.Float32(), b.Float32()))
	}
}

func halfCompare(f func(a, b float32) bool) func(a, b float16.Float16) bool {
	return func(a, b float16.Float16) bool {
		return f(a.Float32(), b.Float32())
	}
}

// Generic per-element functions, instantiated explicitly per type in the
// operator tables.

func addOf[T number](a, b T) T      { return a + b }
func subtractOf[T number](a, b T) T { return a - b }
func multiplyOf[T number](a, b T) T { return a * b }

func equalOf[T comparable](a, b T) bool    { return a == b }
func notEqualOf[T comparable](a, b T) bool { return a != b }

func lessOf[T realNumber](a, b T) bool         { return a < b }
func lessEqualOf[T realNumber](a, b T) bool    { return a <= b }
func greaterOf[T realNumber](a, b T) bool      { return a > b }
func greaterEqualOf[T realNumber](a, b T) bool { return a >= b }

func identity[T any](x T) T { return x }

func negateOf[T number](x T) T { return -x }

func absSigned[T signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func absFloat[T float](x T) T {
	return T(math.Abs(float64(x)))
}

// absHalf clears the sign bit, so NaN payloads and infinities survive.
func absHalf(x float16.Float16) float16.Float16 {
	return float16.Frombits(x.Bits() &^ 0x8000)
}

func negateHalf(x float16.Float16) float16.Float16 {
	return float16.Frombits(x.Bits() ^ 0x8000)
}

// divideInt truncates toward zero. Division by zero yields 0.
func divideInt[T integer](a, b T) T {
	if b == 0 {
		return 0
	}
	return a / b
}

func divideOf[T float | complexNumber](a, b T) T { return a / b }

// floorDivideSigned rounds the quotient toward negative infinity.
func floorDivideSigned[T signed](a, b T) T {
	if b == 0 {
		return 0
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDivideFloat[T float](a, b T) T {
	return T(math.Floor(float64(a) / float64(b)))
}

// remainderSigned takes the sign of the divisor. x % 0 yields 0.
func remainderSigned[T signed](a, b T) T {
	if b == 0 {
		return 0
	}
	r := a % b
	if r != 0 && ((r < 0) != (b < 0)) {
		r += b
	}
	return r
}

func remainderUnsigned[T unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return a % b
}

func remainderFloat[T float](a, b T) T {
	r := math.Mod(float64(a), float64(b))
	if r != 0 && ((r < 0) != (b < 0)) {
		r += float64(b)
	}
	return T(r)
}

// powerSigned is exact integer exponentiation with wraparound. Negative
// exponents truncate to 0 except for bases 1 and -1.
func powerSigned[T signed](base, exp T) T {
	if exp < 0 {
		switch base {
		case 1:
			return 1
		case -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}
	return powerUnsignedExp(base, uint64(exp))
}

func powerUnsigned[T unsigned](base, exp T) T {
	return powerUnsignedExp(base, uint64(exp))
}

func powerUnsignedExp[T integer](base T, exp uint64) T {
	result := T(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func powerFloat[T float](a, b T) T {
	return T(math.Pow(float64(a), float64(b)))
}

// maximumOf and minimumOf propagate NaN from either side.
func maximumOf[T realNumber](a, b T) T {
	switch {
	case a != a:
		return a
	case b != b:
		return b
	case a >= b:
		return a
	default:
		return b
	}
}

func minimumOf[T realNumber](a, b T) T {
	switch {
	case a != a:
		return a
	case b != b:
		return b
	case a <= b:
		return a
	default:
		return b
	}
}

func maximumHalf(a, b float16.Float16) float16.Float16 {
	switch {
	case a.IsNaN():
		return a
	case b.IsNaN():
		return b
	case a.Float32() >= b.Float32():
		return a
	default:
		return b
	}
}

func minimumHalf(a, b float16.Float16) float16.Float16 {
	switch {
	case a.IsNaN():
		return a
	case b.IsNaN():
		return b
	case a.Float32() <= b.Float32():
		return a
	default:
		return b
	}
}

// Truth values for the logical operations.

func truthOf[T number](x T) bool { return x != 0 }

func truthHalf(x float16.Float16) bool { return x.Float32() != 0 }

func truthBool(x bool) bool { return x }

func logicalNot[T any](truth func(T) bool) func(T) bool {
	return func(x T) bool { return !truth(x) }
}

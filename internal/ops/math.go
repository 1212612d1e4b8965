package ops

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/born-ml/elementwise/internal/ufunc"
)

// unaryMath instantiates one transcendental function over the whole type
// matrix. Integer and bool results are converted back to the operand type.
func unaryMath(f func(float64) float64, c func(complex128) complex128) func(*ufunc.Operator) error {
	return func(op *ufunc.Operator) error {
		return errors.Join(
			ufunc.Unary(op, boolMath(f)),
			ufunc.Unary(op, intMath[int16](f)),
			ufunc.Unary(op, intMath[int32](f)),
			ufunc.Unary(op, intMath[int64](f)),
			ufunc.Unary(op, intMath[uint16](f)),
			ufunc.Unary(op, intMath[uint32](f)),
			ufunc.Unary(op, intMath[uint64](f)),
			ufunc.Unary(op, halfMath(f)),
			ufunc.Unary(op, floatMath[float32](f)),
			ufunc.Unary(op, floatMath[float64](f)),
			ufunc.Unary(op, complexMath[complex64](c)),
			ufunc.Unary(op, complexMath[complex128](c)),
		)
	}
}

// rounding instantiates floor or ceil. Integers are already integral.
func rounding(f func(float64) float64) func(*ufunc.Operator) error {
	return func(op *ufunc.Operator) error {
		return errors.Join(
			ufunc.Unary(op, identity[int16]),
			ufunc.Unary(op, identity[int32]),
			ufunc.Unary(op, identity[int64]),
			ufunc.Unary(op, identity[uint16]),
			ufunc.Unary(op, identity[uint32]),
			ufunc.Unary(op, identity[uint64]),
			ufunc.Unary(op, halfMath(f)),
			ufunc.Unary(op, floatMath[float32](f)),
			ufunc.Unary(op, floatMath[float64](f)),
		)
	}
}

func instAbsolute(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Unary(op, identity[bool]),
		ufunc.Unary(op, absSigned[int16]),
		ufunc.Unary(op, absSigned[int32]),
		ufunc.Unary(op, absSigned[int64]),
		ufunc.Unary(op, identity[uint16]),
		ufunc.Unary(op, identity[uint32]),
		ufunc.Unary(op, identity[uint64]),
		ufunc.Unary(op, absHalf),
		ufunc.Unary(op, absFloat[float32]),
		ufunc.Unary(op, absFloat[float64]),
	)
}

// instNegative wraps unsigned values modulo 2^n.
func instNegative(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Unary(op, negateOf[int16]),
		ufunc.Unary(op, negateOf[int32]),
		ufunc.Unary(op, negateOf[int64]),
		ufunc.Unary(op, negateOf[uint16]),
		ufunc.Unary(op, negateOf[uint32]),
		ufunc.Unary(op, negateOf[uint64]),
		ufunc.Unary(op, negateHalf),
		ufunc.Unary(op, negateOf[float32]),
		ufunc.Unary(op, negateOf[float64]),
		ufunc.Unary(op, negateOf[complex64]),
		ufunc.Unary(op, negateOf[complex128]),
	)
}

var (
	instCos    = unaryMath(math.Cos, cmplx.Cos)
	instSin    = unaryMath(math.Sin, cmplx.Sin)
	instTan    = unaryMath(math.Tan, cmplx.Tan)
	instArccos = unaryMath(math.Acos, cmplx.Acos)
	instArcsin = unaryMath(math.Asin, cmplx.Asin)
	instArctan = unaryMath(math.Atan, cmplx.Atan)
	instTanh   = unaryMath(math.Tanh, cmplx.Tanh)
	instExp    = unaryMath(math.Exp, cmplx.Exp)
	instLog    = unaryMath(math.Log, cmplx.Log)
	instSqrt   = unaryMath(math.Sqrt, cmplx.Sqrt)
	instFloor  = rounding(math.Floor)
	instCeil   = rounding(math.Ceil)
)

package ops

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/born-ml/elementwise/internal/ufunc"
)

// instAdd treats bool addition as logical or.
func instAdd(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, func(a, b bool) bool { return a || b }),
		ufunc.Binary(op, addOf[int16]),
		ufunc.Binary(op, addOf[int32]),
		ufunc.Binary(op, addOf[int64]),
		ufunc.Binary(op, addOf[uint16]),
		ufunc.Binary(op, addOf[uint32]),
		ufunc.Binary(op, addOf[uint64]),
		ufunc.Binary(op, halfBinary(addOf[float32])),
		ufunc.Binary(op, addOf[float32]),
		ufunc.Binary(op, addOf[float64]),
		ufunc.Binary(op, addOf[complex64]),
		ufunc.Binary(op, addOf[complex128]),
	)
}

// instMultiply treats bool multiplication as logical and.
func instMultiply(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, func(a, b bool) bool { return a && b }),
		ufunc.Binary(op, multiplyOf[int16]),
		ufunc.Binary(op, multiplyOf[int32]),
		ufunc.Binary(op, multiplyOf[int64]),
		ufunc.Binary(op, multiplyOf[uint16]),
		ufunc.Binary(op, multiplyOf[uint32]),
		ufunc.Binary(op, multiplyOf[uint64]),
		ufunc.Binary(op, halfBinary(multiplyOf[float32])),
		ufunc.Binary(op, multiplyOf[float32]),
		ufunc.Binary(op, multiplyOf[float64]),
		ufunc.Binary(op, multiplyOf[complex64]),
		ufunc.Binary(op, multiplyOf[complex128]),
	)
}

func instSubtract(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, subtractOf[int16]),
		ufunc.Binary(op, subtractOf[int32]),
		ufunc.Binary(op, subtractOf[int64]),
		ufunc.Binary(op, subtractOf[uint16]),
		ufunc.Binary(op, subtractOf[uint32]),
		ufunc.Binary(op, subtractOf[uint64]),
		ufunc.Binary(op, halfBinary(subtractOf[float32])),
		ufunc.Binary(op, subtractOf[float32]),
		ufunc.Binary(op, subtractOf[float64]),
		ufunc.Binary(op, subtractOf[complex64]),
		ufunc.Binary(op, subtractOf[complex128]),
	)
}

// instDivide keeps the operand type: integer quotients truncate.
func instDivide(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, divideInt[int16]),
		ufunc.Binary(op, divideInt[int32]),
		ufunc.Binary(op, divideInt[int64]),
		ufunc.Binary(op, divideInt[uint16]),
		ufunc.Binary(op, divideInt[uint32]),
		ufunc.Binary(op, divideInt[uint64]),
		ufunc.Binary(op, halfBinary(divideOf[float32])),
		ufunc.Binary(op, divideOf[float32]),
		ufunc.Binary(op, divideOf[float64]),
		ufunc.Binary(op, divideOf[complex64]),
		ufunc.Binary(op, divideOf[complex128]),
	)
}

// instFloorDivide computes floor(a / b). Complex and bool are excluded.
func instFloorDivide(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, floorDivideSigned[int16]),
		ufunc.Binary(op, floorDivideSigned[int32]),
		ufunc.Binary(op, floorDivideSigned[int64]),
		ufunc.Binary(op, divideInt[uint16]),
		ufunc.Binary(op, divideInt[uint32]),
		ufunc.Binary(op, divideInt[uint64]),
		ufunc.Binary(op, halfBinary(floorDivideFloat[float32])),
		ufunc.Binary(op, floorDivideFloat[float32]),
		ufunc.Binary(op, floorDivideFloat[float64]),
	)
}

func instRemainder(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, remainderSigned[int16]),
		ufunc.Binary(op, remainderSigned[int32]),
		ufunc.Binary(op, remainderSigned[int64]),
		ufunc.Binary(op, remainderUnsigned[uint16]),
		ufunc.Binary(op, remainderUnsigned[uint32]),
		ufunc.Binary(op, remainderUnsigned[uint64]),
		ufunc.Binary(op, halfBinary(remainderFloat[float32])),
		ufunc.Binary(op, remainderFloat[float32]),
		ufunc.Binary(op, remainderFloat[float64]),
	)
}

func instPower(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, powerSigned[int16]),
		ufunc.Binary(op, powerSigned[int32]),
		ufunc.Binary(op, powerSigned[int64]),
		ufunc.Binary(op, powerUnsigned[uint16]),
		ufunc.Binary(op, powerUnsigned[uint32]),
		ufunc.Binary(op, powerUnsigned[uint64]),
		ufunc.Binary(op, halfBinary(func(a, b float32) float32 {
			return float32(math.Pow(float64(a), float64(b)))
		})),
		ufunc.Binary(op, powerFloat[float32]),
		ufunc.Binary(op, powerFloat[float64]),
		ufunc.Binary(op, func(a, b complex64) complex64 {
			return complex64(cmplx.Pow(complex128(a), complex128(b)))
		}),
		ufunc.Binary(op, cmplx.Pow),
	)
}

// instMaximum treats bool maximum as logical or.
func instMaximum(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, func(a, b bool) bool { return a || b }),
		ufunc.Binary(op, maximumOf[int16]),
		ufunc.Binary(op, maximumOf[int32]),
		ufunc.Binary(op, maximumOf[int64]),
		ufunc.Binary(op, maximumOf[uint16]),
		ufunc.Binary(op, maximumOf[uint32]),
		ufunc.Binary(op, maximumOf[uint64]),
		ufunc.Binary(op, maximumHalf),
		ufunc.Binary(op, maximumOf[float32]),
		ufunc.Binary(op, maximumOf[float64]),
	)
}

// instMinimum treats bool minimum as logical and.
func instMinimum(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, func(a, b bool) bool { return a && b }),
		ufunc.Binary(op, minimumOf[int16]),
		ufunc.Binary(op, minimumOf[int32]),
		ufunc.Binary(op, minimumOf[int64]),
		ufunc.Binary(op, minimumOf[uint16]),
		ufunc.Binary(op, minimumOf[uint32]),
		ufunc.Binary(op, minimumOf[uint64]),
		ufunc.Binary(op, minimumHalf),
		ufunc.Binary(op, minimumOf[float32]),
		ufunc.Binary(op, minimumOf[float64]),
	)
}

package ops

import (
	"errors"

	"github.com/born-ml/elementwise/internal/ufunc"
)

// Comparisons on half precision compare the float32 values, so NaN is
// unequal to itself and the two zeros are equal.

func instEqual(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, equalOf[bool]),
		ufunc.Binary(op, equalOf[int16]),
		ufunc.Binary(op, equalOf[int32]),
		ufunc.Binary(op, equalOf[int64]),
		ufunc.Binary(op, equalOf[uint16]),
		ufunc.Binary(op, equalOf[uint32]),
		ufunc.Binary(op, equalOf[uint64]),
		ufunc.Binary(op, halfCompare(equalOf[float32])),
		ufunc.Binary(op, equalOf[float32]),
		ufunc.Binary(op, equalOf[float64]),
		ufunc.Binary(op, equalOf[complex64]),
		ufunc.Binary(op, equalOf[complex128]),
	)
}

func instNotEqual(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Binary(op, notEqualOf[bool]),
		ufunc.Binary(op, notEqualOf[int16]),
		ufunc.Binary(op, notEqualOf[int32]),
		ufunc.Binary(op, notEqualOf[int64]),
		ufunc.Binary(op, notEqualOf[uint16]),
		ufunc.Binary(op, notEqualOf[uint32]),
		ufunc.Binary(op, notEqualOf[uint64]),
		ufunc.Binary(op, halfCompare(notEqualOf[float32])),
		ufunc.Binary(op, notEqualOf[float32]),
		ufunc.Binary(op, notEqualOf[float64]),
		ufunc.Binary(op, notEqualOf[complex64]),
		ufunc.Binary(op, notEqualOf[complex128]),
	)
}

// ordering instantiates one ordered comparison. bools order false < true.
func ordering(
	onBool func(a, b bool) bool,
	i16 func(a, b int16) bool, i32 func(a, b int32) bool, i64 func(a, b int64) bool,
	u16 func(a, b uint16) bool, u32 func(a, b uint32) bool, u64 func(a, b uint64) bool,
	f32 func(a, b float32) bool, f64 func(a, b float64) bool,
) func(*ufunc.Operator) error {
	return func(op *ufunc.Operator) error {
		return errors.Join(
			ufunc.Binary(op, onBool),
			ufunc.Binary(op, i16),
			ufunc.Binary(op, i32),
			ufunc.Binary(op, i64),
			ufunc.Binary(op, u16),
			ufunc.Binary(op, u32),
			ufunc.Binary(op, u64),
			ufunc.Binary(op, halfCompare(f32)),
			ufunc.Binary(op, f32),
			ufunc.Binary(op, f64),
		)
	}
}

var (
	instLess = ordering(
		func(a, b bool) bool { return !a && b },
		lessOf[int16], lessOf[int32], lessOf[int64],
		lessOf[uint16], lessOf[uint32], lessOf[uint64],
		lessOf[float32], lessOf[float64],
	)
	instLessEqual = ordering(
		func(a, b bool) bool { return !a || b },
		lessEqualOf[int16], lessEqualOf[int32], lessEqualOf[int64],
		lessEqualOf[uint16], lessEqualOf[uint32], lessEqualOf[uint64],
		lessEqualOf[float32], lessEqualOf[float64],
	)
	instGreater = ordering(
		func(a, b bool) bool { return a && !b },
		greaterOf[int16], greaterOf[int32], greaterOf[int64],
		greaterOf[uint16], greaterOf[uint32], greaterOf[uint64],
		greaterOf[float32], greaterOf[float64],
	)
	instGreaterEqual = ordering(
		func(a, b bool) bool { return a || !b },
		greaterEqualOf[int16], greaterEqualOf[int32], greaterEqualOf[int64],
		greaterEqualOf[uint16], greaterEqualOf[uint32], greaterEqualOf[uint64],
		greaterEqualOf[float32], greaterEqualOf[float64],
	)
)

// logical instantiates a binary truth-table operation over the whole type
// matrix. Non-zero values are true; NaN is non-zero.
func logical(combine func(a, b bool) bool) func(*ufunc.Operator) error {
	return func(op *ufunc.Operator) error {
		return errors.Join(
			ufunc.Binary(op, combineWith(truthBool, combine)),
			ufunc.Binary(op, combineWith(truthOf[int16], combine)),
			ufunc.Binary(op, combineWith(truthOf[int32], combine)),
			ufunc.Binary(op, combineWith(truthOf[int64], combine)),
			ufunc.Binary(op, combineWith(truthOf[uint16], combine)),
			ufunc.Binary(op, combineWith(truthOf[uint32], combine)),
			ufunc.Binary(op, combineWith(truthOf[uint64], combine)),
			ufunc.Binary(op, combineWith(truthHalf, combine)),
			ufunc.Binary(op, combineWith(truthOf[float32], combine)),
			ufunc.Binary(op, combineWith(truthOf[float64], combine)),
			ufunc.Binary(op, combineWith(truthOf[complex64], combine)),
			ufunc.Binary(op, combineWith(truthOf[complex128], combine)),
		)
	}
}

func combineWith[T any](truth func(T) bool, combine func(a, b bool) bool) func(a, b T) bool {
	return func(a, b T) bool { return combine(truth(a), truth(b)) }
}

var (
	instLogicalAnd = logical(func(a, b bool) bool { return a && b })
	instLogicalOr  = logical(func(a, b bool) bool { return a || b })
	instLogicalXor = logical(func(a, b bool) bool { return a != b })
)

func instLogicalNot(op *ufunc.Operator) error {
	return errors.Join(
		ufunc.Unary(op, logicalNot(truthBool)),
		ufunc.Unary(op, logicalNot(truthOf[int16])),
		ufunc.Unary(op, logicalNot(truthOf[int32])),
		ufunc.Unary(op, logicalNot(truthOf[int64])),
		ufunc.Unary(op, logicalNot(truthOf[uint16])),
		ufunc.Unary(op, logicalNot(truthOf[uint32])),
		ufunc.Unary(op, logicalNot(truthOf[uint64])),
		ufunc.Unary(op, logicalNot(truthHalf)),
		ufunc.Unary(op, logicalNot(truthOf[float32])),
		ufunc.Unary(op, logicalNot(truthOf[float64])),
		ufunc.Unary(op, logicalNot(truthOf[complex64])),
		ufunc.Unary(op, logicalNot(truthOf[complex128])),
	)
}

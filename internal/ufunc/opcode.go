// Package ufunc expands elementwise operator descriptors across the type
// matrix into one executable task per (operator, type, variant) and keeps
// them in a registry keyed for constant-time dispatch.
package ufunc

import (
	"fmt"
	"strings"
)

// OpCode identifies one mathematical operation. Codes are dense, start at 1
// and are stable: they form the high bits of every runtime task id.
type OpCode uint16

// Operation codes. Names follow NumPy.
const (
	OpInvalid OpCode = iota
	OpAbsolute
	OpAdd
	OpArccos
	OpArcsin
	OpArctan
	OpCeil
	OpCos
	OpDivide
	OpEqual
	OpExp
	OpFloor
	OpFloorDivide
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpLog
	OpLogicalAnd
	OpLogicalNot
	OpLogicalOr
	OpLogicalXor
	OpMaximum
	OpMinimum
	OpMultiply
	OpNegative
	OpNotEqual
	OpPower
	OpRemainder
	OpSin
	OpSqrt
	OpSubtract
	OpTan
	OpTanh

	numOpCodes
)

// NumOpCodes is the number of valid operation codes.
const NumOpCodes = int(numOpCodes) - 1

var opNames = [...]string{
	OpInvalid:      "invalid",
	OpAbsolute:     "absolute",
	OpAdd:          "add",
	OpArccos:       "arccos",
	OpArcsin:       "arcsin",
	OpArctan:       "arctan",
	OpCeil:         "ceil",
	OpCos:          "cos",
	OpDivide:       "divide",
	OpEqual:        "equal",
	OpExp:          "exp",
	OpFloor:        "floor",
	OpFloorDivide:  "floor_divide",
	OpGreater:      "greater",
	OpGreaterEqual: "greater_equal",
	OpLess:         "less",
	OpLessEqual:    "less_equal",
	OpLog:          "log",
	OpLogicalAnd:   "logical_and",
	OpLogicalNot:   "logical_not",
	OpLogicalOr:    "logical_or",
	OpLogicalXor:   "logical_xor",
	OpMaximum:      "maximum",
	OpMinimum:      "minimum",
	OpMultiply:     "multiply",
	OpNegative:     "negative",
	OpNotEqual:     "not_equal",
	OpPower:        "power",
	OpRemainder:    "remainder",
	OpSin:          "sin",
	OpSqrt:         "sqrt",
	OpSubtract:     "subtract",
	OpTan:          "tan",
	OpTanh:         "tanh",
}

// Valid reports whether op names a real operation.
func (op OpCode) Valid() bool {
	return op > OpInvalid && op < numOpCodes
}

// String returns the NumPy name of the operation.
func (op OpCode) String() string {
	if op < numOpCodes {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint16(op))
}

// ParseOpCode resolves a NumPy operation name. A trailing "_scalar" is not
// accepted here; the variant is selected separately.
func ParseOpCode(name string) (OpCode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := OpCode(1); i < numOpCodes; i++ {
		if opNames[i] == name {
			return i, nil
		}
	}
	return OpInvalid, fmt.Errorf("unknown operation %q", name)
}

// AllOpCodes lists every valid code in ascending order.
func AllOpCodes() []OpCode {
	out := make([]OpCode, 0, NumOpCodes)
	for i := OpCode(1); i < numOpCodes; i++ {
		out = append(out, i)
	}
	return out
}

// Arity is the number of array operands an operation takes.
type Arity uint8

// Arities.
const (
	ArityUnary  Arity = 1
	ArityBinary Arity = 2
)

// String returns "unary" or "binary".
func (a Arity) String() string {
	switch a {
	case ArityUnary:
		return "unary"
	case ArityBinary:
		return "binary"
	default:
		return fmt.Sprintf("arity(%d)", uint8(a))
	}
}

// ResultRule relates the result element type to the operand type.
type ResultRule uint8

// Result rules.
const (
	SameType   ResultRule = iota // Result has the operand type (multiply).
	BoolResult                   // Result is always bool (not_equal).
)

// String returns the rule name.
func (r ResultRule) String() string {
	switch r {
	case SameType:
		return "same"
	case BoolResult:
		return "bool"
	default:
		return fmt.Sprintf("rule(%d)", uint8(r))
	}
}

// Variant selects the operand form of a task.
type Variant uint8

// Variants. The value is the low bit of the runtime task id.
const (
	ArrayArray  Variant = iota // Every operand is an array region.
	ArrayScalar                // The second operand is a scalar held constant.

	numVariants
)

// String returns "array" or "scalar".
func (v Variant) String() string {
	switch v {
	case ArrayArray:
		return "array"
	case ArrayScalar:
		return "scalar"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v < numVariants
}

// ParseVariant resolves a variant name.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case "array", "aa", "array_array", "":
		return ArrayArray, nil
	case "scalar", "as", "array_scalar":
		return ArrayScalar, nil
	default:
		return ArrayArray, fmt.Errorf("unknown variant %q", name)
	}
}

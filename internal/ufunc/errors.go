package ufunc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/elementwise/internal/array"
)

// Error is the single error type reported by registration, dispatch and
// execution. Registration codes are fatal at startup; dispatch and
// execution codes are returned to the caller.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Op, DType and Variant locate the task, when known.
	Op      OpCode
	DType   array.DataType
	Variant Variant

	hasType    bool
	hasVariant bool
}

// ErrorCode categorizes errors.
type ErrorCode string

// Dispatch and execution codes.
const (
	// ErrCodeShapeMismatch indicates operand or output shapes differ.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"

	// ErrCodeUnsupportedType indicates a type outside the operator's set.
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeUnregisteredTask indicates no task exists for the key.
	ErrCodeUnregisteredTask ErrorCode = "UNREGISTERED_TASK"

	// ErrCodeTypeMismatch indicates an operand whose type is not the task type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeInvalidArgument indicates a malformed launch (operand count, missing scalar).
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Registration codes.
const (
	ErrCodeArityMismatch      ErrorCode = "ARITY_MISMATCH"
	ErrCodeResultTypeMismatch ErrorCode = "RESULT_TYPE_MISMATCH"
	ErrCodeDuplicateOpCode    ErrorCode = "DUPLICATE_OPCODE"
	ErrCodeDuplicateTask      ErrorCode = "DUPLICATE_TASK"
	ErrCodeTypeExcluded       ErrorCode = "TYPE_EXCLUDED"
	ErrCodeTypeNotDeclared    ErrorCode = "TYPE_NOT_DECLARED"
	ErrCodeIncompleteOperator ErrorCode = "INCOMPLETE_OPERATOR"
	ErrCodeRegistryFrozen     ErrorCode = "REGISTRY_FROZEN"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var loc []string
	if e.Op != OpInvalid {
		loc = append(loc, "op="+e.Op.String())
	}
	if e.hasType {
		loc = append(loc, "dtype="+e.DType.String())
	}
	if e.hasVariant {
		loc = append(loc, "variant="+e.Variant.String())
	}
	if len(loc) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(loc, ", "))
}

// Registration reports whether the code belongs to registration time.
func (e *Error) Registration() bool {
	switch e.Code {
	case ErrCodeArityMismatch, ErrCodeResultTypeMismatch, ErrCodeDuplicateOpCode,
		ErrCodeDuplicateTask, ErrCodeTypeExcluded, ErrCodeTypeNotDeclared,
		ErrCodeIncompleteOperator, ErrCodeRegistryFrozen:
		return true
	}
	return false
}

// NewKeyError builds an Error located at key. Device backends use it so
// their bodies report the same codes as the host bodies.
func NewKeyError(code ErrorCode, key TaskKey, format string, args ...any) *Error {
	return keyError(code, key, format, args...)
}

func opError(code ErrorCode, op OpCode, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

func keyError(code ErrorCode, key TaskKey, format string, args ...any) *Error {
	return &Error{
		Code:       code,
		Op:         key.Op,
		DType:      key.DType,
		Variant:    key.Variant,
		Message:    fmt.Sprintf(format, args...),
		hasType:    true,
		hasVariant: true,
	}
}

func typeError(code ErrorCode, op OpCode, dt array.DataType, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		DType:   dt,
		Message: fmt.Sprintf(format, args...),
		hasType: true,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// anyError walks err's whole tree, including every branch of errors.Join,
// and reports whether match holds for some *Error in it.
func anyError(err error, match func(*Error) bool) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && match(e) {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, branch := range u.Unwrap() {
			if anyError(branch, match) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return anyError(u.Unwrap(), match)
	}
	return false
}

// HasCode returns true if some *Error in err's tree carries code.
func HasCode(err error, code ErrorCode) bool {
	return anyError(err, func(e *Error) bool { return e.Code == code })
}

// IsShapeMismatch returns true if err carries ErrCodeShapeMismatch.
func IsShapeMismatch(err error) bool { return HasCode(err, ErrCodeShapeMismatch) }

// IsUnsupportedType returns true if err carries ErrCodeUnsupportedType.
func IsUnsupportedType(err error) bool { return HasCode(err, ErrCodeUnsupportedType) }

// IsUnregisteredTask returns true if err carries ErrCodeUnregisteredTask.
func IsUnregisteredTask(err error) bool { return HasCode(err, ErrCodeUnregisteredTask) }

// IsTypeMismatch returns true if err carries ErrCodeTypeMismatch.
func IsTypeMismatch(err error) bool { return HasCode(err, ErrCodeTypeMismatch) }

// IsInvalidArgument returns true if err carries ErrCodeInvalidArgument.
func IsInvalidArgument(err error) bool { return HasCode(err, ErrCodeInvalidArgument) }

// IsArityMismatch returns true if err carries ErrCodeArityMismatch.
func IsArityMismatch(err error) bool { return HasCode(err, ErrCodeArityMismatch) }

// IsRegistrationError returns true if err carries any registration code.
func IsRegistrationError(err error) bool {
	return anyError(err, (*Error).Registration)
}

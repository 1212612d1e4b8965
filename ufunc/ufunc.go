// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ufunc provides lookup and dispatch of elementwise operator tasks.
//
// Every (operation, element type, variant) combination an operator supports
// is registered once as a task. Tasks are selected by TaskKey and run on a
// processor kind; a task without a body for the requested kind runs on CPU.
//
// Example:
//
//	a := array.Vector[int32](1, 2, 3)
//	b := array.Vector[int32](4, 5, 6)
//	c, err := ufunc.Apply(ufunc.Multiply, a, b) // [4 10 18]
//
//	s := array.NewScalar[uint16](5)
//	m, err := ufunc.ApplyScalar(ufunc.LessEqual, array.Vector[uint16](1, 5, 9), s) // [true true false]
package ufunc

import (
	"log/slog"

	"github.com/born-ml/elementwise/array"
	"github.com/born-ml/elementwise/internal/backend/webgpu"
	"github.com/born-ml/elementwise/internal/ops"
	"github.com/born-ml/elementwise/internal/parallel"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// OpCode identifies one mathematical operation.
type OpCode = ufunc.OpCode

// Operation codes.
const (
	Absolute     OpCode = ufunc.OpAbsolute
	Add          OpCode = ufunc.OpAdd
	Arccos       OpCode = ufunc.OpArccos
	Arcsin       OpCode = ufunc.OpArcsin
	Arctan       OpCode = ufunc.OpArctan
	Ceil         OpCode = ufunc.OpCeil
	Cos          OpCode = ufunc.OpCos
	Divide       OpCode = ufunc.OpDivide
	Equal        OpCode = ufunc.OpEqual
	Exp          OpCode = ufunc.OpExp
	Floor        OpCode = ufunc.OpFloor
	FloorDivide  OpCode = ufunc.OpFloorDivide
	Greater      OpCode = ufunc.OpGreater
	GreaterEqual OpCode = ufunc.OpGreaterEqual
	Less         OpCode = ufunc.OpLess
	LessEqual    OpCode = ufunc.OpLessEqual
	Log          OpCode = ufunc.OpLog
	LogicalAnd   OpCode = ufunc.OpLogicalAnd
	LogicalNot   OpCode = ufunc.OpLogicalNot
	LogicalOr    OpCode = ufunc.OpLogicalOr
	LogicalXor   OpCode = ufunc.OpLogicalXor
	Maximum      OpCode = ufunc.OpMaximum
	Minimum      OpCode = ufunc.OpMinimum
	Multiply     OpCode = ufunc.OpMultiply
	Negative     OpCode = ufunc.OpNegative
	NotEqual     OpCode = ufunc.OpNotEqual
	Power        OpCode = ufunc.OpPower
	Remainder    OpCode = ufunc.OpRemainder
	Sin          OpCode = ufunc.OpSin
	Sqrt         OpCode = ufunc.OpSqrt
	Subtract     OpCode = ufunc.OpSubtract
	Tan          OpCode = ufunc.OpTan
	Tanh         OpCode = ufunc.OpTanh
)

// Variant selects the operand form of a task.
type Variant = ufunc.Variant

// Variants.
const (
	ArrayArray  Variant = ufunc.ArrayArray
	ArrayScalar Variant = ufunc.ArrayScalar
)

// ProcessorKind selects which body of a task runs.
type ProcessorKind = runtime.ProcessorKind

// Processor kinds.
const (
	CPU ProcessorKind = runtime.CPU
	OMP ProcessorKind = runtime.OMP
	GPU ProcessorKind = runtime.GPU
)

type (
	// TaskKey selects one task.
	TaskKey = ufunc.TaskKey
	// Task is one registered (operation, type, variant) combination.
	Task = ufunc.Task
	// Registry holds every task. It is read-only once built.
	Registry = ufunc.Registry
	// Args carries the regions of one launch.
	Args = runtime.Args
	// Error is the error type of every registration, dispatch and execution failure.
	Error = ufunc.Error
	// ErrorCode categorizes an Error.
	ErrorCode = ufunc.ErrorCode
	// Accelerator attaches device bodies to tasks.
	Accelerator = ops.Accelerator
	// Option configures NewRegistry.
	Option = ops.Option
	// ParallelConfig controls the OMP bodies' chunked loops.
	ParallelConfig = parallel.Config
)

// Error codes returned at dispatch and execution time.
const (
	ErrCodeShapeMismatch    ErrorCode = ufunc.ErrCodeShapeMismatch
	ErrCodeUnsupportedType  ErrorCode = ufunc.ErrCodeUnsupportedType
	ErrCodeUnregisteredTask ErrorCode = ufunc.ErrCodeUnregisteredTask
	ErrCodeTypeMismatch     ErrorCode = ufunc.ErrCodeTypeMismatch
	ErrCodeInvalidArgument  ErrorCode = ufunc.ErrCodeInvalidArgument
)

// ParseOpCode resolves a NumPy operation name such as "floor_divide".
func ParseOpCode(name string) (OpCode, error) {
	return ufunc.ParseOpCode(name)
}

// Default returns the process-wide registry, built on first use.
func Default() (*Registry, error) {
	return ops.Default()
}

// NewRegistry builds a private registry.
func NewRegistry(opts ...Option) (*Registry, error) {
	return ops.NewRegistry(opts...)
}

// WithParallel sets the loop configuration of OMP bodies.
func WithParallel(cfg ParallelConfig) Option {
	return ops.WithParallel(cfg)
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return ops.WithLogger(l)
}

// WithAccelerator attaches a device backend's bodies.
func WithAccelerator(a Accelerator) Option {
	return ops.WithAccelerator(a)
}

// NewGPU opens the WebGPU backend. It fails when no adapter is present or the
// platform has no WebGPU support.
func NewGPU(logger *slog.Logger) (Accelerator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a, err := webgpu.New(logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Lookup returns the task for key in the default registry.
func Lookup(key TaskKey) (*Task, error) {
	reg, err := ops.Default()
	if err != nil {
		return nil, err
	}
	return reg.Lookup(key)
}

// Execute runs the task for key on proc in the default registry.
func Execute(key TaskKey, proc ProcessorKind, args Args) (*array.Region, error) {
	reg, err := ops.Default()
	if err != nil {
		return nil, err
	}
	return reg.Execute(key, proc, args)
}

// Dispatch runs op on proc in the default registry. The element type comes
// from the first input and the variant from whether Args.Scalar is set.
func Dispatch(op OpCode, proc ProcessorKind, args Args) (*array.Region, error) {
	reg, err := ops.Default()
	if err != nil {
		return nil, err
	}
	return reg.Dispatch(op, proc, args)
}

// Apply runs op over one or two regions of the same type on CPU.
func Apply(op OpCode, inputs ...*array.Region) (*array.Region, error) {
	return Dispatch(op, CPU, Args{Inputs: inputs})
}

// ApplyScalar runs op between every element of a and s on CPU.
func ApplyScalar(op OpCode, a *array.Region, s array.Scalar) (*array.Region, error) {
	return Dispatch(op, CPU, Args{Inputs: []*array.Region{a}, Scalar: &s})
}

// ApplyTo runs op on CPU writing into out, which may alias an input.
func ApplyTo(op OpCode, out *array.Region, inputs ...*array.Region) (*array.Region, error) {
	return Dispatch(op, CPU, Args{Inputs: inputs, Output: out})
}

// CodeOf returns the code of the first *Error in err's tree, or "".
func CodeOf(err error) ErrorCode { return ufunc.CodeOf(err) }

// IsShapeMismatch reports whether err carries ErrCodeShapeMismatch.
func IsShapeMismatch(err error) bool { return ufunc.IsShapeMismatch(err) }

// IsUnsupportedType reports whether err carries ErrCodeUnsupportedType.
func IsUnsupportedType(err error) bool { return ufunc.IsUnsupportedType(err) }

// IsUnregisteredTask reports whether err carries ErrCodeUnregisteredTask.
func IsUnregisteredTask(err error) bool { return ufunc.IsUnregisteredTask(err) }

// IsTypeMismatch reports whether err carries ErrCodeTypeMismatch.
func IsTypeMismatch(err error) bool { return ufunc.IsTypeMismatch(err) }

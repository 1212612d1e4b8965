// Package ops declares every elementwise operator and instantiates it for
// each element type in its supported set.
package ops

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/parallel"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// Supported-type sets.
var (
	allTypes = array.AllDataTypes()

	realTypes = []array.DataType{
		array.Int16, array.Int32, array.Int64,
		array.Uint16, array.Uint32, array.Uint64,
		array.Float16, array.Float32, array.Float64,
	}

	noComplexTypes = append([]array.DataType{array.Bool}, realTypes...)

	noBoolTypes = append(append([]array.DataType(nil), realTypes...), array.Complex64, array.Complex128)
)

// Definition pairs an operator descriptor with its per-type instantiation table.
type Definition struct {
	Descriptor  ufunc.Descriptor
	Instantiate func(*ufunc.Operator) error
}

func unary(code ufunc.OpCode, result ufunc.ResultRule, types []array.DataType, excludes array.Kind) ufunc.Descriptor {
	return ufunc.Descriptor{Code: code, Arity: ufunc.ArityUnary, Result: result, Types: types, Excludes: excludes}
}

func binary(code ufunc.OpCode, result ufunc.ResultRule, types []array.DataType, excludes array.Kind) ufunc.Descriptor {
	return ufunc.Descriptor{Code: code, Arity: ufunc.ArityBinary, Result: result, Types: types, Excludes: excludes}
}

// Definitions returns every operator in code order.
func Definitions() []Definition {
	const (
		none      = array.Kind(0)
		noBool    = array.KindBool
		noComplex = array.KindComplex
		realOnly  = array.KindBool | array.KindComplex
	)
	return []Definition{
		{unary(ufunc.OpAbsolute, ufunc.SameType, noComplexTypes, noComplex), instAbsolute},
		{binary(ufunc.OpAdd, ufunc.SameType, allTypes, none), instAdd},
		{unary(ufunc.OpArccos, ufunc.SameType, allTypes, none), instArccos},
		{unary(ufunc.OpArcsin, ufunc.SameType, allTypes, none), instArcsin},
		{unary(ufunc.OpArctan, ufunc.SameType, allTypes, none), instArctan},
		{unary(ufunc.OpCeil, ufunc.SameType, realTypes, realOnly), instCeil},
		{unary(ufunc.OpCos, ufunc.SameType, allTypes, none), instCos},
		{binary(ufunc.OpDivide, ufunc.SameType, noBoolTypes, noBool), instDivide},
		{binary(ufunc.OpEqual, ufunc.BoolResult, allTypes, none), instEqual},
		{unary(ufunc.OpExp, ufunc.SameType, allTypes, none), instExp},
		{unary(ufunc.OpFloor, ufunc.SameType, realTypes, realOnly), instFloor},
		{binary(ufunc.OpFloorDivide, ufunc.SameType, realTypes, realOnly), instFloorDivide},
		{binary(ufunc.OpGreater, ufunc.BoolResult, noComplexTypes, noComplex), instGreater},
		{binary(ufunc.OpGreaterEqual, ufunc.BoolResult, noComplexTypes, noComplex), instGreaterEqual},
		{binary(ufunc.OpLess, ufunc.BoolResult, noComplexTypes, noComplex), instLess},
		{binary(ufunc.OpLessEqual, ufunc.BoolResult, noComplexTypes, noComplex), instLessEqual},
		{unary(ufunc.OpLog, ufunc.SameType, allTypes, none), instLog},
		{binary(ufunc.OpLogicalAnd, ufunc.BoolResult, allTypes, none), instLogicalAnd},
		{unary(ufunc.OpLogicalNot, ufunc.BoolResult, allTypes, none), instLogicalNot},
		{binary(ufunc.OpLogicalOr, ufunc.BoolResult, allTypes, none), instLogicalOr},
		{binary(ufunc.OpLogicalXor, ufunc.BoolResult, allTypes, none), instLogicalXor},
		{binary(ufunc.OpMaximum, ufunc.SameType, noComplexTypes, noComplex), instMaximum},
		{binary(ufunc.OpMinimum, ufunc.SameType, noComplexTypes, noComplex), instMinimum},
		{binary(ufunc.OpMultiply, ufunc.SameType, allTypes, none), instMultiply},
		{unary(ufunc.OpNegative, ufunc.SameType, noBoolTypes, noBool), instNegative},
		{binary(ufunc.OpNotEqual, ufunc.BoolResult, allTypes, none), instNotEqual},
		{binary(ufunc.OpPower, ufunc.SameType, noBoolTypes, noBool), instPower},
		{binary(ufunc.OpRemainder, ufunc.SameType, realTypes, realOnly), instRemainder},
		{unary(ufunc.OpSin, ufunc.SameType, allTypes, none), instSin},
		{unary(ufunc.OpSqrt, ufunc.SameType, allTypes, none), instSqrt},
		{binary(ufunc.OpSubtract, ufunc.SameType, noBoolTypes, noBool), instSubtract},
		{unary(ufunc.OpTan, ufunc.SameType, allTypes, none), instTan},
		{unary(ufunc.OpTanh, ufunc.SameType, allTypes, none), instTanh},
	}
}

// Accelerator attaches device bodies to registered tasks before the
// registry is frozen.
type Accelerator interface {
	Name() string
	Attach(reg *ufunc.Registry) (int, error)
}

type options struct {
	ufunc  []ufunc.Option
	accel  []Accelerator
	logger *slog.Logger
}

// Option configures NewRegistry.
type Option func(*options)

// WithParallel sets the loop configuration of OMP bodies.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.ufunc = append(o.ufunc, ufunc.WithParallel(cfg))
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
		o.ufunc = append(o.ufunc, ufunc.WithLogger(l))
	}
}

// WithAccelerator attaches a device backend's bodies.
func WithAccelerator(a Accelerator) Option {
	return func(o *options) {
		if a != nil {
			o.accel = append(o.accel, a)
		}
	}
}

// NewRegistry declares all operators, runs their instantiation tables and
// freezes the result. Every registration failure is reported, joined.
func NewRegistry(opts ...Option) (*ufunc.Registry, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	reg := ufunc.NewRegistry(o.ufunc...)

	var errs []error
	for _, def := range Definitions() {
		op, err := reg.Declare(def.Descriptor)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := def.Instantiate(op); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("register operators: %w", errors.Join(errs...))
	}

	for _, a := range o.accel {
		n, err := a.Attach(reg)
		if err != nil {
			return nil, fmt.Errorf("attach %s bodies: %w", a.Name(), err)
		}
		o.logger.Debug("accelerator attached", "backend", a.Name(), "tasks", n)
	}

	if err := reg.Freeze(); err != nil {
		return nil, fmt.Errorf("freeze registry: %w", err)
	}
	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *ufunc.Registry
	defaultErr  error
)

// Default returns the process-wide registry, building it on first use.
// Concurrent callers block until the build is done and all see the same
// registry and error.
func Default() (*ufunc.Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = NewRegistry()
	})
	return defaultReg, defaultErr
}

// MustDefault is Default that panics on a registration error.
func MustDefault() *ufunc.Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

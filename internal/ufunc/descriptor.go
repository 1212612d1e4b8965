package ufunc

import (
	"github.com/born-ml/elementwise/internal/array"
)

// Descriptor declares one operation independently of element type.
type Descriptor struct {
	Code   OpCode
	Arity  Arity
	Result ResultRule

	// Types is the supported-type set.
	Types []array.DataType

	// Excludes lists type families the math is undefined for. Declaring a
	// type from an excluded family is a registration error.
	Excludes array.Kind

	// Variants defaults to ArrayArray for unary operations and to both
	// variants for binary ones.
	Variants []Variant
}

// Operator is a declared operation. It is the handle per-type functions
// are instantiated against.
type Operator struct {
	code     OpCode
	arity    Arity
	result   ResultRule
	types    []array.DataType
	excludes array.Kind
	variants []Variant

	supported [array.NumDataTypes]bool
	hasVar    [numVariants]bool
	reg       *Registry
}

// Code returns the operation code.
func (o *Operator) Code() OpCode { return o.code }

// Arity returns the operand count.
func (o *Operator) Arity() Arity { return o.arity }

// Result returns the result-type rule.
func (o *Operator) Result() ResultRule { return o.result }

// Types returns a copy of the supported-type set in declaration order.
func (o *Operator) Types() []array.DataType {
	return append([]array.DataType(nil), o.types...)
}

// Variants returns a copy of the applicable variants.
func (o *Operator) Variants() []Variant {
	return append([]Variant(nil), o.variants...)
}

// Supports reports whether dt is in the supported-type set.
func (o *Operator) Supports(dt array.DataType) bool {
	return dt.Valid() && o.supported[dt]
}

// HasVariant reports whether v applies to the operator.
func (o *Operator) HasVariant(v Variant) bool {
	return v.Valid() && o.hasVar[v]
}

// ResultType returns the result element type for operand type dt.
func (o *Operator) ResultType(dt array.DataType) array.DataType {
	if o.result == BoolResult {
		return array.Bool
	}
	return dt
}

// String returns the operation name.
func (o *Operator) String() string {
	return o.code.String()
}

func newOperator(reg *Registry, d Descriptor) (*Operator, error) {
	if !d.Code.Valid() {
		return nil, opError(ErrCodeInvalidArgument, d.Code, "operation code %d out of range", uint16(d.Code))
	}
	if d.Arity != ArityUnary && d.Arity != ArityBinary {
		return nil, opError(ErrCodeArityMismatch, d.Code, "arity must be unary or binary, got %s", d.Arity)
	}
	if d.Result != SameType && d.Result != BoolResult {
		return nil, opError(ErrCodeResultTypeMismatch, d.Code, "unknown result rule %s", d.Result)
	}
	if len(d.Types) == 0 {
		return nil, opError(ErrCodeTypeNotDeclared, d.Code, "supported-type set is empty")
	}

	o := &Operator{
		code:     d.Code,
		arity:    d.Arity,
		result:   d.Result,
		excludes: d.Excludes,
		reg:      reg,
	}

	for _, dt := range d.Types {
		if !dt.Valid() {
			return nil, typeError(ErrCodeTypeNotDeclared, d.Code, dt, "unknown data type %d", uint8(dt))
		}
		if d.Excludes.Overlaps(dt.Kind()) {
			return nil, typeError(ErrCodeTypeExcluded, d.Code, dt, "%s is undefined for %s", d.Code, dt)
		}
		if o.supported[dt] {
			return nil, typeError(ErrCodeDuplicateTask, d.Code, dt, "type declared twice")
		}
		o.supported[dt] = true
		o.types = append(o.types, dt)
	}

	variants := d.Variants
	if len(variants) == 0 {
		variants = []Variant{ArrayArray}
		if d.Arity == ArityBinary {
			variants = append(variants, ArrayScalar)
		}
	}
	for _, v := range variants {
		if !v.Valid() {
			return nil, opError(ErrCodeInvalidArgument, d.Code, "unknown variant %d", uint8(v))
		}
		if v == ArrayScalar && d.Arity != ArityBinary {
			return nil, opError(ErrCodeArityMismatch, d.Code, "scalar variant requires a binary operation")
		}
		if o.hasVar[v] {
			return nil, opError(ErrCodeDuplicateTask, d.Code, "variant %s declared twice", v)
		}
		o.hasVar[v] = true
		o.variants = append(o.variants, v)
	}

	return o, nil
}

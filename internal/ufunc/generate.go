package ufunc

import (
	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/backend/cpu"
	"github.com/born-ml/elementwise/internal/runtime"
)

// Unary instantiates op for element type T with the per-element function f
// and registers its array task. R must be T for same-type operations and
// bool for boolean-result operations.
func Unary[T, R array.Element](op *Operator, f func(T) R) error {
	if err := checkInstance[T, R](op, ArityUnary); err != nil {
		return err
	}
	key := TaskKey{Op: op.code, DType: array.TypeOf[T](), Variant: ArrayArray}
	t := &Task{key: key, result: array.TypeOf[R]()}
	t.bodies[runtime.CPU] = mapBody(key, op.reg.seq, f)
	t.bodies[runtime.OMP] = mapBody(key, op.reg.par, f)
	return op.reg.add(t)
}

// Binary instantiates op for element type T with the per-element function f
// and registers one task per applicable variant.
func Binary[T, R array.Element](op *Operator, f func(T, T) R) error {
	if err := checkInstance[T, R](op, ArityBinary); err != nil {
		return err
	}
	dt := array.TypeOf[T]()
	result := array.TypeOf[R]()
	for _, v := range op.variants {
		key := TaskKey{Op: op.code, DType: dt, Variant: v}
		t := &Task{key: key, result: result}
		switch v {
		case ArrayArray:
			t.bodies[runtime.CPU] = zipBody(key, op.reg.seq, f)
			t.bodies[runtime.OMP] = zipBody(key, op.reg.par, f)
		case ArrayScalar:
			t.bodies[runtime.CPU] = scalarBody(key, op.reg.seq, f)
			t.bodies[runtime.OMP] = scalarBody(key, op.reg.par, f)
		}
		if err := op.reg.add(t); err != nil {
			return err
		}
	}
	return nil
}

func checkInstance[T, R array.Element](op *Operator, arity Arity) error {
	dt := array.TypeOf[T]()
	if op.reg.frozen {
		return typeError(ErrCodeRegistryFrozen, op.code, dt, "cannot instantiate after freeze")
	}
	if op.arity != arity {
		return typeError(ErrCodeArityMismatch, op.code, dt, "%s function supplied for %s operation", arity, op.arity)
	}
	if want := op.ResultType(dt); array.TypeOf[R]() != want {
		return typeError(ErrCodeResultTypeMismatch, op.code, dt, "result type %s, want %s", array.TypeOf[R](), want)
	}
	if op.excludes.Overlaps(dt.Kind()) {
		return typeError(ErrCodeTypeExcluded, op.code, dt, "%s is undefined for %s", op.code, dt)
	}
	if !op.supported[dt] {
		return typeError(ErrCodeTypeNotDeclared, op.code, dt, "type is not in the supported set")
	}
	for _, v := range op.variants {
		key := TaskKey{Op: op.code, DType: dt, Variant: v}
		if op.reg.task(key) != nil {
			return keyError(ErrCodeDuplicateTask, key, "task already registered")
		}
	}
	return nil
}

// mapBody is the universal function body of a unary operation.
func mapBody[T, R array.Element](key TaskKey, be *cpu.CPUBackend, f func(T) R) runtime.Body {
	return func(args runtime.Args) (*array.Region, error) {
		if len(args.Inputs) != 1 || args.Scalar != nil {
			return nil, keyError(ErrCodeInvalidArgument, key, "want one input region and no scalar, got %d inputs", len(args.Inputs))
		}
		a := args.Inputs[0]
		if err := checkOperand(key, a); err != nil {
			return nil, err
		}
		out, err := prepareOutput[R](key, a, args.Output)
		if err != nil {
			return nil, err
		}
		cpu.Map(be, out, a, f)
		return out, nil
	}
}

// zipBody is the universal function body of a binary operation. Operand
// shapes must match exactly.
func zipBody[T, R array.Element](key TaskKey, be *cpu.CPUBackend, f func(T, T) R) runtime.Body {
	return func(args runtime.Args) (*array.Region, error) {
		if len(args.Inputs) != 2 || args.Scalar != nil {
			return nil, keyError(ErrCodeInvalidArgument, key, "want two input regions and no scalar, got %d inputs", len(args.Inputs))
		}
		a, b := args.Inputs[0], args.Inputs[1]
		if err := checkOperand(key, a); err != nil {
			return nil, err
		}
		if err := checkOperand(key, b); err != nil {
			return nil, err
		}
		if !a.Shape().Equal(b.Shape()) {
			return nil, keyError(ErrCodeShapeMismatch, key, "operand shapes %v and %v differ", a.Shape(), b.Shape())
		}
		out, err := prepareOutput[R](key, a, args.Output)
		if err != nil {
			return nil, err
		}
		cpu.Zip(be, out, a, b, f)
		return out, nil
	}
}

// scalarBody is the scalar-broadcast body of a binary operation. The scalar
// is applied as the second operand of every element.
func scalarBody[T, R array.Element](key TaskKey, be *cpu.CPUBackend, f func(T, T) R) runtime.Body {
	return func(args runtime.Args) (*array.Region, error) {
		if len(args.Inputs) != 1 || args.Scalar == nil {
			return nil, keyError(ErrCodeInvalidArgument, key, "want one input region and a scalar, got %d inputs", len(args.Inputs))
		}
		a := args.Inputs[0]
		if err := checkOperand(key, a); err != nil {
			return nil, err
		}
		s, ok := array.ScalarValue[T](*args.Scalar)
		if !ok {
			return nil, keyError(ErrCodeTypeMismatch, key, "scalar is %s", args.Scalar.DType())
		}
		out, err := prepareOutput[R](key, a, args.Output)
		if err != nil {
			return nil, err
		}
		cpu.ZipScalar(be, out, a, s, f)
		return out, nil
	}
}

func checkOperand(key TaskKey, r *array.Region) error {
	if r == nil {
		return keyError(ErrCodeInvalidArgument, key, "nil input region")
	}
	if r.DType() != key.DType {
		return keyError(ErrCodeTypeMismatch, key, "operand is %s", r.DType())
	}
	return nil
}

// prepareOutput allocates the result region, or validates a caller-supplied
// one. A supplied output may alias an input.
func prepareOutput[R array.Element](key TaskKey, like, out *array.Region) (*array.Region, error) {
	want := array.TypeOf[R]()
	if out == nil {
		r, err := array.NewRegion(like.Shape(), want, like.Device())
		if err != nil {
			return nil, keyError(ErrCodeInvalidArgument, key, "allocate output: %v", err)
		}
		return r, nil
	}
	if !out.Shape().Equal(like.Shape()) {
		return nil, keyError(ErrCodeShapeMismatch, key, "output shape %v, want %v", out.Shape(), like.Shape())
	}
	if out.DType() != want {
		return nil, keyError(ErrCodeTypeMismatch, key, "output is %s, want %s", out.DType(), want)
	}
	return out, nil
}

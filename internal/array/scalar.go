package array

import "fmt"

// Scalar is a single tagged value broadcast against every element of a region.
type Scalar struct {
	dtype DataType
	value any
}

// NewScalar wraps v as a Scalar of v's element type.
func NewScalar[T Element](v T) Scalar {
	return Scalar{dtype: TypeOf[T](), value: v}
}

// DType returns the scalar's element type.
func (s Scalar) DType() DataType {
	return s.dtype
}

// Value returns the scalar as an untyped value.
func (s Scalar) Value() any {
	return s.value
}

// String formats the scalar with its type.
func (s Scalar) String() string {
	return fmt.Sprintf("%v:%s", s.value, s.dtype)
}

// ScalarValue returns the typed value held by s. The boolean is false when
// T does not match the scalar's type; no conversion is attempted.
func ScalarValue[T Element](s Scalar) (T, bool) {
	v, ok := s.value.(T)
	return v, ok
}

// Broadcast materializes s into a region of the given shape.
func Broadcast[T Element](s Scalar, shape Shape, device Device) (*Region, error) {
	v, ok := ScalarValue[T](s)
	if !ok {
		return nil, fmt.Errorf("broadcast: scalar is %s, not %s", s.dtype, TypeOf[T]())
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("broadcast: %w", err)
	}
	return Full(shape, v, device), nil
}

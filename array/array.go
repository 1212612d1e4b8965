// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides the public region types consumed by elementwise
// operator tasks.
//
// A Region is a contiguous, reference-counted block of elements with a shape,
// row-major strides and one element type from the type matrix:
//   - bool
//   - int16, int32, int64 and uint16, uint32, uint64
//   - float16 (half), float32, float64
//   - complex64, complex128
//
// Example:
//
//	a := array.Vector[int32](1, 2, 3)
//	b, _ := array.FromSlice([]float32{1, 2, 3, 4}, array.Shape{2, 2})
//	vals := array.ToSlice[float32](b)
package array

import (
	"github.com/x448/float16"

	"github.com/born-ml/elementwise/internal/array"
)

// Element is the constraint satisfied by every supported Go element type.
type Element = array.Element

// Half is the IEEE 754 binary16 element type.
type Half = float16.Float16

// DataType is the runtime element type tag.
type DataType = array.DataType

// Data type constants.
const (
	Bool       DataType = array.Bool
	Int16      DataType = array.Int16
	Int32      DataType = array.Int32
	Int64      DataType = array.Int64
	Uint16     DataType = array.Uint16
	Uint32     DataType = array.Uint32
	Uint64     DataType = array.Uint64
	Float16    DataType = array.Float16
	Float32    DataType = array.Float32
	Float64    DataType = array.Float64
	Complex64  DataType = array.Complex64
	Complex128 DataType = array.Complex128
)

// Device identifies the memory a region lives in.
type Device = array.Device

// Device constants.
const (
	Host Device = array.Host
	GPU  Device = array.GPU
)

// Shape represents the dimensions of a region.
// Example: Shape{2, 3} is a 2×3 matrix. A zero dimension is valid.
type Shape = array.Shape

// Region is a typed block of elements.
type Region = array.Region

// Scalar is a single tagged value for the array-scalar variant.
type Scalar = array.Scalar

// New creates a zero-filled host region.
func New(shape Shape, dtype DataType) (*Region, error) {
	return array.NewRegion(shape, dtype, array.Host)
}

// Zeros creates a zero-filled host region of element type T.
func Zeros[T Element](shape Shape) *Region {
	return array.Zeros[T](shape, array.Host)
}

// Full creates a host region filled with value.
func Full[T Element](shape Shape, value T) *Region {
	return array.Full(shape, value, array.Host)
}

// FromSlice copies data into a new host region of the given shape.
func FromSlice[T Element](data []T, shape Shape) (*Region, error) {
	return array.FromSlice(data, shape, array.Host)
}

// Vector creates a 1-D host region. It panics on error.
func Vector[T Element](data ...T) *Region {
	return array.Vector(data...)
}

// ToSlice copies the elements of r into a new slice.
// It panics if T does not match r's element type.
func ToSlice[T Element](r *Region) []T {
	return array.ToSlice[T](r)
}

// Data returns a zero-copy view of r's elements.
// It panics if T does not match r's element type.
func Data[T Element](r *Region) []T {
	return array.Data[T](r)
}

// NewScalar wraps v as a Scalar.
func NewScalar[T Element](v T) Scalar {
	return array.NewScalar(v)
}

// TypeOf returns the DataType of T.
func TypeOf[T Element]() DataType {
	return array.TypeOf[T]()
}

// ParseDataType parses a type name such as "int32" or "complex128".
func ParseDataType(name string) (DataType, error) {
	return array.ParseDataType(name)
}

// AllDataTypes returns the type matrix in tag order.
func AllDataTypes() []DataType {
	return array.AllDataTypes()
}

// Package array provides the array region, shape and element type definitions
// consumed by the elementwise operator tasks.
package array

import (
	"fmt"

	"github.com/x448/float16"
)

// Element is a constraint for the supported region element types.
// Exact types are listed (no ~) so every Element maps to exactly one DataType.
type Element interface {
	bool |
		int16 | int32 | int64 |
		uint16 | uint32 | uint64 |
		float16.Float16 | float32 | float64 |
		complex64 | complex128
}

// DataType represents runtime type information for regions.
// Codes are dense and stable; they are part of the runtime task id.
type DataType uint8

// Supported data types.
const (
	Bool DataType = iota
	Int16
	Int32
	Int64
	Uint16
	Uint32
	Uint64
	Float16
	Float32
	Float64
	Complex64
	Complex128

	numDataTypes
)

// NumDataTypes is the size of the type matrix.
const NumDataTypes = int(numDataTypes)

var dataTypeNames = [...]string{
	Bool:       "bool",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float16:    "float16",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Bool:
		return 1
	case Int16, Uint16, Float16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	default:
		panic("unknown data type")
	}
}

// Valid reports whether dt is one of the known tags.
func (dt DataType) Valid() bool {
	return dt < numDataTypes
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	if !dt.Valid() {
		return "unknown"
	}
	return dataTypeNames[dt]
}

// Kind returns the kind bit of the data type.
func (dt DataType) Kind() Kind {
	switch dt {
	case Bool:
		return KindBool
	case Int16, Int32, Int64:
		return KindSigned
	case Uint16, Uint32, Uint64:
		return KindUnsigned
	case Float16, Float32, Float64:
		return KindFloat
	case Complex64, Complex128:
		return KindComplex
	default:
		return 0
	}
}

// ParseDataType resolves a name produced by String. A few NumPy aliases are accepted.
func ParseDataType(name string) (DataType, error) {
	switch name {
	case "half":
		return Float16, nil
	case "float", "single":
		return Float32, nil
	case "double":
		return Float64, nil
	}
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}

// AllDataTypes returns the full type matrix in tag order.
func AllDataTypes() []DataType {
	all := make([]DataType, NumDataTypes)
	for i := range all {
		all[i] = DataType(i)
	}
	return all
}

// Kind is a bit mask of element type families.
type Kind uint8

// Element type families.
const (
	KindBool Kind = 1 << iota
	KindSigned
	KindUnsigned
	KindFloat
	KindComplex
)

// KindInteger covers signed and unsigned integers.
const KindInteger = KindSigned | KindUnsigned

// Has reports whether every bit of other is set in k.
func (k Kind) Has(other Kind) bool {
	return k&other == other && other != 0
}

// Overlaps reports whether k and other share any bit.
func (k Kind) Overlaps(other Kind) bool {
	return k&other != 0
}

// TypeOf returns the DataType tag for the Go type T.
func TypeOf[T Element]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case bool:
		return Bool
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	case complex64:
		return Complex64
	case complex128:
		return Complex128
	default:
		panic("unsupported type")
	}
}

package array

import "fmt"

// Zeros creates a zero-filled region of element type T.
//
// Example:
//
//	r := array.Zeros[float32](Shape{3, 4}, array.Host)
func Zeros[T Element](shape Shape, device Device) *Region {
	r, err := NewRegion(shape, TypeOf[T](), device)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return r
}

// Full creates a region filled with a specific value.
//
// Example:
//
//	r := array.Full[float32](Shape{3, 3}, 3.14, array.Host)
func Full[T Element](shape Shape, value T, device Device) *Region {
	r := Zeros[T](shape, device)
	data := Data[T](r)
	for i := range data {
		data[i] = value
	}
	return r
}

// FromSlice creates a region from a Go slice.
// The slice is copied into the region's memory.
func FromSlice[T Element](data []T, shape Shape, device Device) (*Region, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	r, err := NewRegion(shape, TypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	copy(Data[T](r), data)
	return r, nil
}

// Vector is FromSlice for a 1-D region; it panics on error and is meant for
// tests and examples.
func Vector[T Element](data ...T) *Region {
	r, err := FromSlice(data, Shape{len(data)}, Host)
	if err != nil {
		panic(err)
	}
	return r
}

// ToSlice copies the region's elements into a new slice.
func ToSlice[T Element](r *Region) []T {
	src := Data[T](r)
	out := make([]T, len(src))
	copy(out, src)
	return out
}

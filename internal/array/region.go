package array

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Device identifies the memory a region lives in.
type Device int

// Supported devices.
const (
	Host Device = iota
	GPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case Host:
		return "host"
	case GPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// regionBuffer is a reference-counted shared buffer.
type regionBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

func newRegionBuffer(size int) *regionBuffer {
	buf := &regionBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (rb *regionBuffer) addRef() {
	rb.refCount.Add(1)
}

func (rb *regionBuffer) release() {
	if rb.refCount.Add(-1) == 0 {
		rb.mu.Lock()
		defer rb.mu.Unlock()
		rb.data = nil
	}
}

func (rb *regionBuffer) isUnique() bool {
	return rb.refCount.Load() == 1
}

// Region is a handle to a shaped, typed buffer owned by the runtime.
// Operator tasks only read and write its elements; they never change its
// shape, layout or lifetime.
type Region struct {
	buffer *regionBuffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRegion allocates a zero-filled region with the given shape and type.
func NewRegion(shape Shape, dtype DataType, device Device) (*Region, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("invalid data type %d", dtype)
	}

	return &Region{
		buffer: newRegionBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the region's shape.
func (r *Region) Shape() Shape {
	return r.shape
}

// Strides returns the region's row-major strides in elements.
func (r *Region) Strides() []int {
	return r.stride
}

// DType returns the region's element type.
func (r *Region) DType() DataType {
	return r.dtype
}

// Device returns where the region's memory lives.
func (r *Region) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *Region) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *Region) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Bytes returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *Region) Bytes() []byte {
	return r.buffer.data
}

// Clone returns a handle sharing the same buffer.
func (r *Region) Clone() *Region {
	r.buffer.addRef()
	return &Region{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Release drops this handle's reference to the buffer.
func (r *Region) Release() {
	r.buffer.release()
}

// IsUnique returns true if this handle is the only reference to the buffer.
func (r *Region) IsUnique() bool {
	return r.buffer.isUnique()
}

// Aliases reports whether r and other share a buffer.
func (r *Region) Aliases(other *Region) bool {
	return other != nil && r.buffer == other.buffer
}

// String returns a short description of the region.
func (r *Region) String() string {
	return fmt.Sprintf("Region[%s]%v on %s", r.dtype, r.shape, r.device)
}

// Data returns a typed zero-copy view of the region's elements.
// Panics if T does not match the region's dtype.
func Data[T Element](r *Region) []T {
	if want := TypeOf[T](); r.dtype != want {
		panic(fmt.Sprintf("region dtype is %s, not %s", r.dtype, want))
	}
	n := r.NumElements()
	if n == 0 {
		return []T{}
	}
	data := r.buffer.data
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
}

// Package webgpu runs float32 elementwise tasks on the GPU through WebGPU
// and attaches them to the operator registry as GPU bodies.
package webgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// ErrUnavailable is returned by New when no WebGPU adapter can be used.
var ErrUnavailable = errors.New("webgpu: not available")

// executor runs one compiled kernel over n float32 elements.
type executor interface {
	runBinary(name, code string, a, b []byte, n int) ([]byte, error)
	runUnary(name, code string, in []byte, n int) ([]byte, error)
	adapterName() string
}

// Accelerator attaches GPU bodies to the float32 tasks that have a kernel.
type Accelerator struct {
	exec   executor
	logger *slog.Logger
}

// Name returns the accelerator name.
func (a *Accelerator) Name() string {
	return a.exec.adapterName()
}

// Attach registers a GPU body for every kernel whose task exists. Only the
// array-array variant is offloaded; scalar variants stay on the host.
func (a *Accelerator) Attach(reg *ufunc.Registry) (int, error) {
	n := 0
	for _, k := range binaryKernels {
		key := ufunc.TaskKey{Op: k.Op, DType: array.Float32, Variant: ufunc.ArrayArray}
		if err := reg.Attach(key, runtime.GPU, a.binaryBody(key, k)); err != nil {
			return n, err
		}
		n++
	}
	for _, k := range unaryKernels {
		key := ufunc.TaskKey{Op: k.Op, DType: array.Float32, Variant: ufunc.ArrayArray}
		if err := reg.Attach(key, runtime.GPU, a.unaryBody(key, k)); err != nil {
			return n, err
		}
		n++
	}
	a.logger.Debug("webgpu kernels attached", "adapter", a.Name(), "tasks", n)
	return n, nil
}

func (a *Accelerator) binaryBody(key ufunc.TaskKey, k Kernel) runtime.Body {
	code := k.Source(ufunc.ArityBinary)
	return func(args runtime.Args) (*array.Region, error) {
		if len(args.Inputs) != 2 || args.Scalar != nil {
			return nil, ufunc.NewKeyError(ufunc.ErrCodeInvalidArgument, key,
				"want two input regions and no scalar, got %d inputs", len(args.Inputs))
		}
		x, y := args.Inputs[0], args.Inputs[1]
		if err := checkFloat32(key, x, y); err != nil {
			return nil, err
		}
		if !x.Shape().Equal(y.Shape()) {
			return nil, ufunc.NewKeyError(ufunc.ErrCodeShapeMismatch, key,
				"operand shapes %v and %v differ", x.Shape(), y.Shape())
		}
		if err := checkOutput(key, x, args.Output); err != nil {
			return nil, err
		}
		out, err := a.exec.runBinary(k.Name(), code, x.Bytes(), y.Bytes(), x.NumElements())
		if err != nil {
			return nil, fmt.Errorf("webgpu %s: %w", key, err)
		}
		if err := checkReadBack(key, x, out); err != nil {
			return nil, err
		}
		xs, ys, res := array.Data[float32](x), array.Data[float32](y), floatView(out)
		patched := 0
		for i := range res {
			if !k.Trusted(xs[i], ys[i]) {
				res[i] = k.Binary(xs[i], ys[i])
				patched++
			}
		}
		a.logPatched(key, patched)
		return writeResult(key, x, args.Output, out)
	}
}

func (a *Accelerator) unaryBody(key ufunc.TaskKey, k Kernel) runtime.Body {
	code := k.Source(ufunc.ArityUnary)
	return func(args runtime.Args) (*array.Region, error) {
		if len(args.Inputs) != 1 || args.Scalar != nil {
			return nil, ufunc.NewKeyError(ufunc.ErrCodeInvalidArgument, key,
				"want one input region and no scalar, got %d inputs", len(args.Inputs))
		}
		x := args.Inputs[0]
		if err := checkFloat32(key, x); err != nil {
			return nil, err
		}
		if err := checkOutput(key, x, args.Output); err != nil {
			return nil, err
		}
		out, err := a.exec.runUnary(k.Name(), code, x.Bytes(), x.NumElements())
		if err != nil {
			return nil, fmt.Errorf("webgpu %s: %w", key, err)
		}
		if err := checkReadBack(key, x, out); err != nil {
			return nil, err
		}
		xs, res := array.Data[float32](x), floatView(out)
		patched := 0
		for i := range res {
			if !k.Trusted(xs[i], 0) {
				res[i] = k.Unary(xs[i])
				patched++
			}
		}
		a.logPatched(key, patched)
		return writeResult(key, x, args.Output, out)
	}
}

func (a *Accelerator) logPatched(key ufunc.TaskKey, n int) {
	if n > 0 {
		a.logger.Debug("webgpu elements recomputed on host", "task", key.String(), "elements", n)
	}
}

func checkFloat32(key ufunc.TaskKey, regions ...*array.Region) error {
	for _, r := range regions {
		if r == nil {
			return ufunc.NewKeyError(ufunc.ErrCodeInvalidArgument, key, "nil input region")
		}
		if r.DType() != array.Float32 {
			return ufunc.NewKeyError(ufunc.ErrCodeTypeMismatch, key, "operand is %s", r.DType())
		}
	}
	return nil
}

// checkOutput validates a caller-supplied output. It may alias an input.
func checkOutput(key ufunc.TaskKey, like, out *array.Region) error {
	if out == nil {
		return nil
	}
	if !out.Shape().Equal(like.Shape()) {
		return ufunc.NewKeyError(ufunc.ErrCodeShapeMismatch, key, "output shape %v, want %v", out.Shape(), like.Shape())
	}
	if out.DType() != array.Float32 {
		return ufunc.NewKeyError(ufunc.ErrCodeTypeMismatch, key, "output is %s, want float32", out.DType())
	}
	return nil
}

func checkReadBack(key ufunc.TaskKey, like *array.Region, data []byte) error {
	if want := like.ByteSize(); len(data) != want {
		return fmt.Errorf("webgpu %s: read back %d bytes, want %d", key, len(data), want)
	}
	return nil
}

// floatView reinterprets read-back bytes as float32 in host byte order.
func floatView(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}

// writeResult copies the read-back bytes into out, or into a fresh GPU
// region shaped like like. out has been validated by checkOutput.
func writeResult(key ufunc.TaskKey, like, out *array.Region, data []byte) (*array.Region, error) {
	if out == nil {
		r, err := array.NewRegion(like.Shape(), array.Float32, array.GPU)
		if err != nil {
			return nil, ufunc.NewKeyError(ufunc.ErrCodeInvalidArgument, key, "allocate output: %v", err)
		}
		out = r
	}
	copy(out.Bytes(), data)
	return out, nil
}

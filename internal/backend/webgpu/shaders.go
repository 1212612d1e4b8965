package webgpu

import (
	"fmt"
	"math"

	"github.com/born-ml/elementwise/internal/ufunc"
)

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// binaryTemplate computes result = <expr> over a and b.
const binaryTemplate = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = %s;
    }
}
`

// unaryTemplate computes result = <expr> over input.
const unaryTemplate = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = %s;
    }
}
`

// Kernel is one float32 WGSL kernel for an operation. Unary or Binary is
// the host form of the same operation, used for elements the device result
// cannot be trusted on.
type Kernel struct {
	Op   ufunc.OpCode
	Expr string

	Unary  func(x float32) float32
	Binary func(a, b float32) float32

	// Overflows reports finite operands whose exact result may be beyond
	// the float32 range.
	Overflows func(a, b float32) bool
}

// Name is the shader and pipeline cache key.
func (k Kernel) Name() string { return "f32_" + k.Op.String() }

// Source returns the WGSL module for the kernel.
func (k Kernel) Source(arity ufunc.Arity) string {
	if arity == ufunc.ArityBinary {
		return fmt.Sprintf(binaryTemplate, workgroupSize, k.Expr)
	}
	return fmt.Sprintf(unaryTemplate, workgroupSize, k.Expr)
}

// Trusted reports whether the device result for these operands needs no
// host check. WGSL does not require NaN or infinity handling, so elements
// with a non-finite operand or an overflowing result are recomputed with
// the host form.
func (k Kernel) Trusted(a, b float32) bool {
	if !finite(a) || !finite(b) {
		return false
	}
	return k.Overflows == nil || !k.Overflows(a, b)
}

// Operations that yield a finite result for finite operands, apart from the
// overflow of add, subtract and multiply. divide, sqrt, log, exp and tanh
// produce NaN or infinity from finite operands and stay on the host, as do
// maximum and minimum, whose WGSL forms do not propagate NaN.
var binaryKernels = []Kernel{
	{Op: ufunc.OpAdd, Expr: "a[idx] + b[idx]",
		Binary: func(a, b float32) float32 { return a + b }, Overflows: sumOverflows},
	{Op: ufunc.OpSubtract, Expr: "a[idx] - b[idx]",
		Binary: func(a, b float32) float32 { return a - b }, Overflows: sumOverflows},
	{Op: ufunc.OpMultiply, Expr: "a[idx] * b[idx]",
		Binary: func(a, b float32) float32 { return a * b }, Overflows: productOverflows},
}

var unaryKernels = []Kernel{
	{Op: ufunc.OpNegative, Expr: "-input[idx]", Unary: func(x float32) float32 { return -x }},
	{Op: ufunc.OpAbsolute, Expr: "abs(input[idx])", Unary: host(math.Abs)},
	{Op: ufunc.OpFloor, Expr: "floor(input[idx])", Unary: host(math.Floor)},
	{Op: ufunc.OpCeil, Expr: "ceil(input[idx])", Unary: host(math.Ceil)},
	{Op: ufunc.OpSin, Expr: "sin(input[idx])", Unary: host(math.Sin)},
	{Op: ufunc.OpCos, Expr: "cos(input[idx])", Unary: host(math.Cos)},
}

// Kernels lists every GPU kernel.
func Kernels() []Kernel {
	out := make([]Kernel, 0, len(binaryKernels)+len(unaryKernels))
	out = append(out, binaryKernels...)
	return append(out, unaryKernels...)
}

func host(f func(float64) float64) func(float32) float32 {
	return func(x float32) float32 { return float32(f(float64(x))) }
}

func finite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sumOverflows(a, b float32) bool {
	return math.Abs(float64(a))+math.Abs(float64(b)) > math.MaxFloat32
}

func productOverflows(a, b float32) bool {
	return math.Abs(float64(a))*math.Abs(float64(b)) > math.MaxFloat32
}

// Package runtime defines the contract between elementwise tasks and the
// runtime that launches them, plus an in-process reference runtime.
//
// The runtime owns memory, scheduling and launch ordering. Tasks only read
// their input regions and write their output region.
package runtime

import (
	"fmt"
	"strings"

	"github.com/born-ml/elementwise/internal/array"
)

// ProcessorKind selects which body variant of a task is run.
type ProcessorKind uint8

// Processor kinds.
const (
	CPU ProcessorKind = iota // Sequential host loop.
	OMP                      // Chunked parallel host loop.
	GPU                      // Device shader.

	numProcessorKinds
)

// NumProcessorKinds is the number of processor kinds.
const NumProcessorKinds = int(numProcessorKinds)

// String returns the processor name.
func (p ProcessorKind) String() string {
	switch p {
	case CPU:
		return "cpu"
	case OMP:
		return "omp"
	case GPU:
		return "gpu"
	default:
		return fmt.Sprintf("processor(%d)", uint8(p))
	}
}

// ParseProcessorKind resolves a processor name produced by String.
func ParseProcessorKind(name string) (ProcessorKind, error) {
	switch strings.ToLower(name) {
	case "cpu", "":
		return CPU, nil
	case "omp", "parallel":
		return OMP, nil
	case "gpu", "webgpu":
		return GPU, nil
	default:
		return CPU, fmt.Errorf("unknown processor %q", name)
	}
}

// AllProcessorKinds lists every processor kind.
func AllProcessorKinds() []ProcessorKind {
	return []ProcessorKind{CPU, OMP, GPU}
}

// ProcessorMask is a set of processor kinds.
type ProcessorMask uint8

// MaskOf builds a mask from kinds.
func MaskOf(kinds ...ProcessorKind) ProcessorMask {
	var m ProcessorMask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

// Has reports whether k is in the mask.
func (m ProcessorMask) Has(k ProcessorKind) bool {
	return k < numProcessorKinds && m&(1<<k) != 0
}

// Kinds returns the kinds in the mask in ascending order.
func (m ProcessorMask) Kinds() []ProcessorKind {
	var out []ProcessorKind
	for _, k := range AllProcessorKinds() {
		if m.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// String joins the kind names with "|".
func (m ProcessorMask) String() string {
	kinds := m.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, "|")
}

// TaskID is the dense identifier a task is registered under.
type TaskID uint32

// Args carries the physical regions of one launch.
// Inputs holds one region for unary tasks and array-scalar tasks, two for
// array-array tasks. Scalar is set only for array-scalar tasks. Output is
// optional; when nil the task allocates its result.
type Args struct {
	Inputs []*array.Region
	Scalar *array.Scalar
	Output *array.Region
}

// Body is one processor variant of a task.
type Body func(Args) (*array.Region, error)

// Registrar is the registration half of the runtime contract.
type Registrar interface {
	RegisterTask(id TaskID, name string, bodies map[ProcessorKind]Body) error
}

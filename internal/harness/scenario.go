package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// Scenario is one conformance case: a single task launch and its expected
// outcome.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Op is the operation name, e.g. "multiply".
	Op string `yaml:"op"`

	// DType is the operand type tag, e.g. "int32".
	DType string `yaml:"dtype"`

	// Processor selects the body to run. Defaults to "cpu".
	Processor string `yaml:"processor,omitempty"`

	// Shape of the operands. Defaults to a vector of len(A).
	Shape []int `yaml:"shape,omitempty"`

	// A is the first operand.
	A []string `yaml:"a"`

	// B is the second operand of an array-array launch.
	B []string `yaml:"b,omitempty"`

	// Scalar makes the launch use the array-scalar variant.
	Scalar *string `yaml:"scalar,omitempty"`

	// InPlace writes the result into the first operand.
	InPlace bool `yaml:"in_place,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect is the expected outcome. Exactly one of Values and Error is set.
type Expect struct {
	// Values are the expected result elements, in the result type.
	Values []string `yaml:"values,omitempty"`

	// Tolerance allows an absolute difference for float results.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Error is the expected ufunc error code, e.g. "SHAPE_MISMATCH".
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates one scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", sc.Name, err)
	}
	return &sc, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if prev, dup := seen[sc.Name]; dup {
			return nil, fmt.Errorf("%s: scenario %q already defined in %s", filepath.Base(p), sc.Name, prev)
		}
		seen[sc.Name] = filepath.Base(p)
		out = append(out, sc)
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := ufunc.ParseOpCode(s.Op); err != nil {
		return err
	}
	if _, err := array.ParseDataType(s.DType); err != nil {
		return err
	}
	if s.Processor != "" {
		if _, err := runtime.ParseProcessorKind(s.Processor); err != nil {
			return err
		}
	}
	if s.A == nil {
		return fmt.Errorf("operand a is required")
	}
	if s.B != nil && s.Scalar != nil {
		return fmt.Errorf("b and scalar are mutually exclusive")
	}
	if (s.Expect.Values == nil) == (s.Expect.Error == "") {
		return fmt.Errorf("expect needs exactly one of values and error")
	}
	return nil
}

// Key derives the task key the scenario launches.
func (s *Scenario) Key() (ufunc.TaskKey, error) {
	op, err := ufunc.ParseOpCode(s.Op)
	if err != nil {
		return ufunc.TaskKey{}, err
	}
	dt, err := array.ParseDataType(s.DType)
	if err != nil {
		return ufunc.TaskKey{}, err
	}
	key := ufunc.TaskKey{Op: op, DType: dt, Variant: ufunc.ArrayArray}
	if s.Scalar != nil {
		key.Variant = ufunc.ArrayScalar
	}
	return key, nil
}

// Proc returns the requested processor kind.
func (s *Scenario) Proc() runtime.ProcessorKind {
	if s.Processor == "" {
		return runtime.CPU
	}
	p, _ := runtime.ParseProcessorKind(s.Processor)
	return p
}

// Args builds the launch arguments.
func (s *Scenario) Args(dt array.DataType) (runtime.Args, error) {
	var shape array.Shape
	if s.Shape != nil {
		shape = array.Shape(s.Shape)
	}
	a, err := ParseRegion(dt, shape, s.A)
	if err != nil {
		return runtime.Args{}, fmt.Errorf("operand a: %w", err)
	}
	args := runtime.Args{Inputs: []*array.Region{a}}
	if s.B != nil {
		b, err := ParseRegion(dt, shape, s.B)
		if err != nil {
			return runtime.Args{}, fmt.Errorf("operand b: %w", err)
		}
		args.Inputs = append(args.Inputs, b)
	}
	if s.Scalar != nil {
		v, err := ParseScalar(dt, *s.Scalar)
		if err != nil {
			return runtime.Args{}, fmt.Errorf("scalar: %w", err)
		}
		args.Scalar = &v
	}
	if s.InPlace {
		args.Output = a
	}
	return args, nil
}

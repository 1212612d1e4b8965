package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// Runner executes scenarios through a started in-process runtime that holds
// every task of a frozen registry.
type Runner struct {
	reg    *ufunc.Registry
	rt     *runtime.Local
	logger *slog.Logger
}

// NewRunner publishes reg into a fresh runtime and starts it.
func NewRunner(reg *ufunc.Registry, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := runtime.NewLocal(runtime.WithLogger(logger))
	if err := reg.Publish(rt); err != nil {
		return nil, fmt.Errorf("publish registry: %w", err)
	}
	rt.Start()
	return &Runner{reg: reg, rt: rt, logger: logger}, nil
}

// Result is the observable outcome of one scenario.
type Result struct {
	Scenario  string
	Task      string
	TaskID    runtime.TaskID
	Requested runtime.ProcessorKind
	Proc      runtime.ProcessorKind
	DType     array.DataType
	Shape     array.Shape
	Values    []string
	ErrorCode ufunc.ErrorCode
	Err       error
}

// Run launches the scenario's task. A task failure is recorded in the
// result; the returned error is for scenarios that cannot be set up.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	key, err := sc.Key()
	if err != nil {
		return nil, err
	}
	res := &Result{
		Scenario:  sc.Name,
		Task:      key.String(),
		TaskID:    key.ID(),
		Requested: sc.Proc(),
	}

	// Resolve through the registry first so type errors carry their code.
	if _, err := r.reg.Lookup(key); err != nil {
		res.Err = err
		res.ErrorCode = ufunc.CodeOf(err)
		return res, nil
	}

	args, err := sc.Args(key.DType)
	if err != nil {
		return nil, err
	}
	c, err := r.rt.Launch(ctx, runtime.Launch{Task: key.ID(), Proc: sc.Proc(), Args: args})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		res.Err = err
		res.ErrorCode = ufunc.CodeOf(err)
		return res, nil
	}

	res.Proc = c.Proc
	res.DType = c.Output.DType()
	res.Shape = c.Output.Shape()
	res.Values = FormatRegion(c.Output)
	r.logger.Debug("scenario ran", "scenario", sc.Name, "task", c.Name, "launch", c.ID)
	return res, nil
}

// Check compares a result with the scenario's expectation.
func Check(sc *Scenario, res *Result) error {
	if sc.Expect.Error != "" {
		if res.Err == nil {
			return fmt.Errorf("%s: expected %s error, got values %v", sc.Name, sc.Expect.Error, res.Values)
		}
		if string(res.ErrorCode) != sc.Expect.Error {
			return fmt.Errorf("%s: expected %s error, got %v", sc.Name, sc.Expect.Error, res.Err)
		}
		return nil
	}
	if res.Err != nil {
		return fmt.Errorf("%s: unexpected error: %w", sc.Name, res.Err)
	}

	want, err := ParseRegion(res.DType, nil, sc.Expect.Values)
	if err != nil {
		return fmt.Errorf("%s: expected values: %w", sc.Name, err)
	}
	wantStr := FormatRegion(want)
	if len(wantStr) != len(res.Values) {
		return fmt.Errorf("%s: got %d values, want %d", sc.Name, len(res.Values), len(wantStr))
	}

	var errs []error
	for i := range wantStr {
		if !sameValue(res.Values[i], wantStr[i], sc.Expect.Tolerance) {
			errs = append(errs, fmt.Errorf("element %d: got %s, want %s", i, res.Values[i], wantStr[i]))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", sc.Name, errors.Join(errs...))
	}
	return nil
}

// sameValue compares formatted elements. NaN matches NaN.
func sameValue(got, want string, tol float64) bool {
	if got == want {
		return true
	}
	if tol == 0 {
		return false
	}
	g, err1 := strconv.ParseFloat(got, 64)
	w, err2 := strconv.ParseFloat(want, 64)
	if err1 != nil || err2 != nil {
		return false
	}
	return math.Abs(g-w) <= tol
}

// RunAll runs and checks every scenario, returning the results in order and
// the joined check failures.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	var errs []error
	for _, sc := range scenarios {
		res, err := r.Run(ctx, sc)
		if err != nil {
			return results, fmt.Errorf("%s: %w", sc.Name, err)
		}
		results = append(results, res)
		if err := Check(sc, res); err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

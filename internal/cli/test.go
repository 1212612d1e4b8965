package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/born-ml/elementwise/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name  string `json:"name"`
	Pass  bool   `json:"pass"`
	Error string `json:"error,omitempty"`
}

// TestResult is the outcome of a scenario directory.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every YAML scenario in a directory against the registry.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid path or scenario file)

Examples:
  ufunc test ./scenarios
  ufunc test ./scenarios --filter "*_nan*"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only scenarios whose name matches this glob")

	return cmd
}

func runScenarios(cmd *cobra.Command, opts *TestOptions, dir string) error {
	scenarios, err := harness.LoadDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenarios", err)
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
		kept := scenarios[:0]
		for _, sc := range scenarios {
			if ok, _ := filepath.Match(opts.Filter, sc.Name); ok {
				kept = append(kept, sc)
			}
		}
		scenarios = kept
	}

	reg, err := opts.Registry()
	if err != nil {
		return err
	}
	runner, err := harness.NewRunner(reg, opts.Logger)
	if err != nil {
		return WrapExitError(ExitFailure, "start runtime", err)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(scenarios)), Total: len(scenarios)}
	for _, sc := range scenarios {
		sr := ScenarioResult{Name: sc.Name, Pass: true}
		res, err := runner.Run(cmd.Context(), sc)
		if err == nil {
			err = harness.Check(sc, res)
		}
		if err != nil {
			sr.Pass = false
			sr.Error = err.Error()
			result.Failed++
		} else {
			result.Passed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	err = opts.formatter(cmd).Success(result, func(w io.Writer) error {
		for _, sr := range result.Scenarios {
			if sr.Pass {
				fmt.Fprintf(w, "PASS %s\n", sr.Name)
			} else {
				fmt.Fprintf(w, "FAIL %s\n  %s\n", sr.Name, sr.Error)
			}
		}
		_, err := fmt.Fprintf(w, "%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
		return err
	})
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

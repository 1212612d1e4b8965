package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/elementwise/internal/harness"
	"github.com/born-ml/elementwise/internal/runtime"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DType     string
	A         []string
	B         []string
	Scalar    string
	Shape     []int
	Processor string
	InPlace   bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <op>",
		Short: "Launch one task",
		Long: `Launch one task on the in-process runtime and print its result.

Passing --b selects the array-array variant, --scalar the array-scalar
variant; unary operations take --a only.

Exit codes:
  0 - Task succeeded
  1 - Task failed (the error code is printed)
  2 - Command error

Examples:
  ufunc run multiply --dtype int32 --a 1,2,3 --b 4,5,6
  ufunc run less_equal --dtype uint16 --a 1,5,9 --scalar 5
  ufunc run arccos --dtype double --a 1,0,-1 --in-place
  ufunc run add --dtype float32 --a 1,2 --b 3,4 --processor gpu`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DType, "dtype", "", "element type (required)")
	cmd.Flags().StringSliceVar(&opts.A, "a", nil, "first operand values")
	cmd.Flags().StringSliceVar(&opts.B, "b", nil, "second operand values")
	cmd.Flags().StringVar(&opts.Scalar, "scalar", "", "scalar operand")
	cmd.Flags().IntSliceVar(&opts.Shape, "shape", nil, "operand shape (default: vector)")
	cmd.Flags().StringVarP(&opts.Processor, "processor", "p", "", "processor kind (cpu|omp|gpu); default from config")
	cmd.Flags().BoolVar(&opts.InPlace, "in-place", false, "write the result into the first operand")
	_ = cmd.MarkFlagRequired("dtype")
	_ = cmd.MarkFlagRequired("a")

	return cmd
}

func runTask(cmd *cobra.Command, opts *RunOptions, op string) error {
	sc := &harness.Scenario{
		Name:      op,
		Op:        op,
		DType:     opts.DType,
		Processor: opts.Processor,
		Shape:     opts.Shape,
		A:         opts.A,
		InPlace:   opts.InPlace,
	}
	if sc.Processor == "" {
		sc.Processor = opts.Config.Processor
	}
	if cmd.Flags().Changed("b") {
		sc.B = opts.B
	}
	if cmd.Flags().Changed("scalar") {
		sc.Scalar = &opts.Scalar
	}
	if _, err := sc.Key(); err != nil {
		return WrapExitError(ExitCommandError, "invalid task", err)
	}
	if _, err := runtime.ParseProcessorKind(sc.Processor); err != nil {
		return WrapExitError(ExitCommandError, "invalid processor", err)
	}

	reg, err := opts.Registry()
	if err != nil {
		return err
	}
	runner, err := harness.NewRunner(reg, opts.Logger)
	if err != nil {
		return WrapExitError(ExitFailure, "start runtime", err)
	}
	res, err := runner.Run(cmd.Context(), sc)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid operands", err)
	}

	f := opts.formatter(cmd)
	if res.Err != nil {
		if werr := f.Error(res.Err); werr != nil {
			return werr
		}
		return WrapExitError(ExitFailure, "task failed", res.Err)
	}

	snap := res.Snapshot()
	return f.Success(snap, func(w io.Writer) error {
		rows := [][2]string{
			{"task", snap.Task},
			{"task_id", fmt.Sprint(snap.TaskID)},
			{"processor", snap.Processor},
			{"dtype", snap.DType},
			{"shape", fmt.Sprint(snap.Shape)},
			{"values", strings.Join(snap.Values, " ")},
		}
		for _, r := range rows {
			if _, err := fmt.Fprintf(w, "%-10s %s\n", r[0], r[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

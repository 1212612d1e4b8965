package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// TasksOptions holds flags for the tasks command.
type TasksOptions struct {
	*RootOptions
	Op      string
	DType   string
	Variant string
}

// NewTasksCommand creates the tasks command.
func NewTasksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TasksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List registered tasks",
		Long: `List every registered (operation, type, variant) task with its runtime id,
result type and the processors it has bodies for.

Examples:
  ufunc tasks
  ufunc tasks --op less_equal --variant scalar
  ufunc tasks --dtype float16 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTasks(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "only tasks of this operation")
	cmd.Flags().StringVar(&opts.DType, "dtype", "", "only tasks of this element type")
	cmd.Flags().StringVar(&opts.Variant, "variant", "", "only tasks of this variant (array|scalar)")

	return cmd
}

func listTasks(cmd *cobra.Command, opts *TasksOptions) error {
	keep, err := opts.filter()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}
	reg, err := opts.Registry()
	if err != nil {
		return err
	}

	var entries []ufunc.ManifestEntry
	for _, e := range reg.Manifest() {
		if keep(ufunc.KeyFromID(e.ID)) {
			entries = append(entries, e)
		}
	}
	if entries == nil {
		entries = []ufunc.ManifestEntry{}
	}

	return opts.formatter(cmd).Success(entries, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTASK\tRESULT\tPROCS")
		for _, e := range entries {
			fmt.Fprintf(tw, "%d\t%s:%s:%s\t%s\t%s\n", e.ID, e.Op, e.DType, e.Variant, e.Result, e.Procs)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%d tasks\n", len(entries))
		return err
	})
}

func (o *TasksOptions) filter() (func(ufunc.TaskKey) bool, error) {
	var (
		op      ufunc.OpCode
		dt      array.DataType
		variant ufunc.Variant
		err     error
	)
	if o.Op != "" {
		if op, err = ufunc.ParseOpCode(o.Op); err != nil {
			return nil, err
		}
	}
	if o.DType != "" {
		if dt, err = array.ParseDataType(o.DType); err != nil {
			return nil, err
		}
	}
	if o.Variant != "" {
		if variant, err = ufunc.ParseVariant(o.Variant); err != nil {
			return nil, err
		}
	}
	return func(k ufunc.TaskKey) bool {
		return (o.Op == "" || k.Op == op) &&
			(o.DType == "" || k.DType == dt) &&
			(o.Variant == "" || k.Variant == variant)
	}, nil
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/born-ml/elementwise/internal/backend/webgpu"
	"github.com/born-ml/elementwise/internal/runtime"
)

// Info describes the host, the effective config and the registry.
type Info struct {
	Machine   runtime.Machine `json:"machine"`
	Processor string          `json:"processor"`
	Parallel  bool            `json:"parallel"`
	Workers   int             `json:"workers"`
	MinChunk  int             `json:"min_chunk"`
	GPU       bool            `json:"gpu_available"`
	Operators int             `json:"operators"`
	Tasks     int             `json:"tasks"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show machine, config and registry summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.Registry()
			if err != nil {
				return err
			}
			info := Info{
				Machine:   runtime.DetectMachine(),
				Processor: opts.Config.Processor,
				Parallel:  opts.Config.Parallel.Enabled,
				Workers:   opts.Config.Parallel.NumWorkers,
				MinChunk:  opts.Config.Parallel.MinChunkSize,
				GPU:       webgpu.IsAvailable(),
				Operators: len(reg.Operators()),
				Tasks:     reg.Len(),
			}
			return opts.formatter(cmd).Success(info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w,
					"machine    %s/%s, %d cpus, simd %s\nprocessor  %s\nparallel   %t (workers %d, min chunk %d)\ngpu        %t\noperators  %d\ntasks      %d\n",
					info.Machine.GOOS, info.Machine.GOARCH, info.Machine.NumCPU, info.Machine.SIMD,
					info.Processor,
					info.Parallel, info.Workers, info.MinChunk,
					info.GPU,
					info.Operators,
					info.Tasks,
				)
				return err
			})
		},
	}
}

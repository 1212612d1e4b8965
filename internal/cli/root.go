// Package cli implements the ufunc command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/born-ml/elementwise/internal/backend/webgpu"
	"github.com/born-ml/elementwise/internal/ops"
	"github.com/born-ml/elementwise/internal/runtime"
	"github.com/born-ml/elementwise/internal/ufunc"
)

// Version is the release reported by the version command.
var Version = "v0.1.0-dev"

// RootOptions holds global flags and the state derived from them.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config runtime.Config
	Logger *slog.Logger

	registry *ufunc.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ufunc",
		Short: "Elementwise operator registry",
		Long:  "Inspect and run the elementwise operator tasks registered for every element type.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML runtime config")

	cmd.AddCommand(NewVersionCommand(opts))
	cmd.AddCommand(NewTasksCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads the config and installs a text logger on stderr.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := runtime.DefaultConfig()
	if o.ConfigPath != "" {
		loaded, err := runtime.LoadConfig(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Config = cfg
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// Registry builds the operator registry on first use. The WebGPU backend is
// attached when the config enables it and an adapter is present.
func (o *RootOptions) Registry() (*ufunc.Registry, error) {
	if o.registry != nil {
		return o.registry, nil
	}
	opts := []ops.Option{
		ops.WithParallel(o.Config.Parallel),
		ops.WithLogger(o.Logger),
	}
	if o.Config.GPU {
		accel, err := webgpu.New(o.Logger)
		if err != nil {
			o.Logger.Warn("gpu disabled", "error", err)
		} else {
			opts = append(opts, ops.WithAccelerator(accel))
		}
	}
	reg, err := ops.NewRegistry(opts...)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "build registry", err)
	}
	o.registry = reg
	return reg, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

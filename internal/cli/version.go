package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.formatter(cmd).Success(map[string]string{"version": Version}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "ufunc %s\n", Version)
				return err
			})
		},
	}
}

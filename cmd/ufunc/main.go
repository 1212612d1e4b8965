// Package main provides the ufunc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/elementwise/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		code := cli.GetExitCode(err)
		if code != cli.ExitSuccess {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	}
}

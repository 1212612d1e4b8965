//go:build !windows

package webgpu

import "log/slog"

// New reports ErrUnavailable: the WebGPU bindings are only built on windows.
func New(_ *slog.Logger) (*Accelerator, error) {
	return nil, ErrUnavailable
}

// IsAvailable reports whether a WebGPU adapter can be requested.
func IsAvailable() bool { return false }

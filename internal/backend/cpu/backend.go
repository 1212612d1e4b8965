// Package cpu implements the host element loops behind the CPU and OMP
// processor variants of every elementwise task.
package cpu

import (
	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/parallel"
)

// CPUBackend runs element loops on host memory, either on the calling
// goroutine or split into chunks across worker goroutines.
type CPUBackend struct {
	device array.Device
	par    parallel.Config
}

// New creates a sequential CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: array.Host,
		par:    parallel.Sequential(),
	}
}

// NewParallel creates a CPU backend that splits every loop according to cfg.
func NewParallel(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: array.Host,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	if cpu.par.Enabled {
		return "OMP"
	}
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() array.Device {
	return cpu.device
}

// Parallel returns the loop configuration.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}

// Package parallel provides the chunked parallel loops behind the OMP
// processor variant of every elementwise task.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool `yaml:"enabled"`   // Whether parallel execution is enabled.
	NumWorkers   int  `yaml:"workers"`   // Number of worker goroutines to use.
	MinChunkSize int  `yaml:"min_chunk"` // Minimum elements per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096, // Elementwise bodies are cheap per element.
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// chunkSize returns the span handed to each goroutine, or 0 when the loop
// should run sequentially.
func (cfg Config) chunkSize(n int) int {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*max(cfg.MinChunkSize, 1) {
		return 0
	}
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
}

// Chunks reports how many ranges ForRange will split n elements into.
func (cfg Config) Chunks(n int) int {
	size := cfg.chunkSize(n)
	if size == 0 {
		if n == 0 {
			return 0
		}
		return 1
	}
	return (n + size - 1) / size
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f(i)
		}
	}, cfg)
}

// ForRange splits [0, n) into disjoint contiguous ranges and calls f once per
// range. Ranges never overlap, so f may write its slice of an output without
// synchronization. ForRange returns after every call has finished.
func ForRange(n int, f func(lo, hi int), cfg Config) {
	if n <= 0 {
		return
	}
	chunk := cfg.chunkSize(n)
	if chunk == 0 {
		// Sequential fallback.
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

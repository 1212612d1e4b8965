package parallel

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForRange_CoversDisjointRanges(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}
	n := 103

	var mu sync.Mutex
	var ranges [][2]int
	ForRange(n, func(lo, hi int) {
		mu.Lock()
		ranges = append(ranges, [2]int{lo, hi})
		mu.Unlock()
	}, cfg)

	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })
	if len(ranges) != cfg.Chunks(n) {
		t.Fatalf("Expected %d ranges, got %d", cfg.Chunks(n), len(ranges))
	}
	next := 0
	for _, r := range ranges {
		if r[0] != next {
			t.Fatalf("Range %v does not start at %d", r, next)
		}
		if r[1] <= r[0] {
			t.Fatalf("Empty range %v", r)
		}
		next = r[1]
	}
	if next != n {
		t.Errorf("Ranges end at %d, want %d", next, n)
	}
}

func TestForRange_Empty(t *testing.T) {
	called := false
	ForRange(0, func(_, _ int) { called = true }, DefaultConfig())
	if called {
		t.Error("ForRange must not call f for n == 0")
	}
	if got := DefaultConfig().Chunks(0); got != 0 {
		t.Errorf("Chunks(0) = %d, want 0", got)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Sequential()

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
	if cfg.Chunks(100) != 1 {
		t.Errorf("Sequential config should use one range, got %d", cfg.Chunks(100))
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()
	n := cfg.MinChunkSize - 1

	var counter int64
	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
	if cfg.Chunks(n) != 1 {
		t.Errorf("Expected sequential fallback, got %d chunks", cfg.Chunks(n))
	}
}

func BenchmarkForRange(b *testing.B) {
	cfg := DefaultConfig()
	n := 1 << 20
	dst := make([]float64, n)

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ForRange(n, func(lo, hi int) {
				for j := lo; j < hi; j++ {
					dst[j] = float64(j) * 0.5
				}
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ForRange(n, func(lo, hi int) {
				for j := lo; j < hi; j++ {
					dst[j] = float64(j) * 0.5
				}
			}, Sequential())
		}
	})
}

package runtime

import (
	goruntime "runtime"

	"golang.org/x/sys/cpu"
)

// Machine describes the host the runtime is launching tasks on.
type Machine struct {
	GOOS     string   `json:"goos" yaml:"goos"`
	GOARCH   string   `json:"goarch" yaml:"goarch"`
	NumCPU   int      `json:"num_cpu" yaml:"num_cpu"`
	SIMD     string   `json:"simd" yaml:"simd"`
	Features []string `json:"features" yaml:"features"`
}

// DetectMachine inspects the host CPU.
func DetectMachine() Machine {
	m := Machine{
		GOOS:   goruntime.GOOS,
		GOARCH: goruntime.GOARCH,
		NumCPU: goruntime.NumCPU(),
		SIMD:   "scalar",
	}

	switch goruntime.GOARCH {
	case "amd64":
		m.Features = features(map[string]bool{
			"sse41":    cpu.X86.HasSSE41,
			"avx":      cpu.X86.HasAVX,
			"avx2":     cpu.X86.HasAVX2,
			"fma":      cpu.X86.HasFMA,
			"avx512f":  cpu.X86.HasAVX512F,
			"avx512bw": cpu.X86.HasAVX512BW,
		})
		switch {
		case cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW:
			m.SIMD = "avx512"
		case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
			m.SIMD = "avx2"
		case cpu.X86.HasSSE41:
			m.SIMD = "sse4"
		}
	case "arm64":
		m.Features = features(map[string]bool{
			"asimd":   cpu.ARM64.HasASIMD,
			"fphp":    cpu.ARM64.HasFPHP,
			"asimdhp": cpu.ARM64.HasASIMDHP,
			"sve":     cpu.ARM64.HasSVE,
			"sve2":    cpu.ARM64.HasSVE2,
		})
		switch {
		case cpu.ARM64.HasSVE:
			m.SIMD = "sve"
		case cpu.ARM64.HasASIMD:
			m.SIMD = "neon"
		}
	}
	return m
}

// NativeHalf reports whether the host has scalar half precision arithmetic.
// Half precision elements are computed through float32 either way.
func (m Machine) NativeHalf() bool {
	for _, f := range m.Features {
		if f == "fphp" || f == "avx512bw" {
			return true
		}
	}
	return false
}

var featureOrder = []string{"sse41", "avx", "avx2", "fma", "avx512f", "avx512bw", "asimd", "fphp", "asimdhp", "sve", "sve2"}

func features(flags map[string]bool) []string {
	var out []string
	for _, name := range featureOrder {
		if flags[name] {
			out = append(out, name)
		}
	}
	return out
}

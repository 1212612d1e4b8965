package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/elementwise/internal/parallel"
)

// NoParallelEnv disables the OMP variant when set to any non-empty value
// other than "0" or "false".
const NoParallelEnv = "UFUNC_NO_PARALLEL"

// Config controls how the local runtime launches tasks.
type Config struct {
	Processor string          `yaml:"processor"`
	Parallel  parallel.Config `yaml:"parallel"`
	GPU       bool            `yaml:"gpu"`
	LogLevel  string          `yaml:"log_level"`
}

// DefaultConfig derives a config from the detected machine.
func DefaultConfig() Config {
	m := DetectMachine()
	par := parallel.DefaultConfig()
	par.NumWorkers = m.NumCPU
	par.Enabled = m.NumCPU > 1
	cfg := Config{
		Processor: CPU.String(),
		Parallel:  par,
		LogLevel:  "info",
	}
	cfg.applyEnv()
	return cfg
}

// LoadConfig reads a YAML config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config bytes on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if _, err := c.ProcessorKind(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Parallel.NumWorkers < 0 {
		return fmt.Errorf("config: parallel.workers must be >= 0, got %d", c.Parallel.NumWorkers)
	}
	if c.Parallel.MinChunkSize < 0 {
		return fmt.Errorf("config: parallel.min_chunk must be >= 0, got %d", c.Parallel.MinChunkSize)
	}
	return nil
}

// ProcessorKind parses the default processor.
func (c Config) ProcessorKind() (ProcessorKind, error) {
	return ParseProcessorKind(c.Processor)
}

// SlogLevel parses the log level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

func (c *Config) applyEnv() {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(NoParallelEnv)))
	if v != "" && v != "0" && v != "false" {
		c.Parallel.Enabled = false
	}
}

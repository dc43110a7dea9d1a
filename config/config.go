// Package config holds the settings of the pngo command: logging, decode
// strictness and the worker count of check. Values come from defaults, an
// optional YAML file and PNGO_* environment variables, in that order;
// command-line flags are applied last by the caller.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/shoccho/pnGo/logging"
)

const (
	EnvLogLevel      = "PNGO_LOG_LEVEL"
	EnvLogFile       = "PNGO_LOG_FILE"
	EnvStrictAdler32 = "PNGO_STRICT_ADLER32"
	EnvWorkers       = "PNGO_WORKERS"
)

var outputFormats = []string{"ppm", "bmp"}

type Config struct {
	LogLevel      string       `yaml:"log_level"`
	LogFile       string       `yaml:"log_file"`
	StrictAdler32 bool         `yaml:"strict_adler32"`
	Workers       int          `yaml:"workers"`
	Output        OutputConfig `yaml:"output"`
}

// OutputConfig holds defaults for images written by decode.
type OutputConfig struct {
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Workers:  4,
		Output:   OutputConfig{Format: "ppm"},
	}
}

// ApplyEnv overrides fields from PNGO_* variables that are set and
// non-empty.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv(EnvStrictAdler32); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrictAdler32, err)
		}
		c.StrictAdler32 = b
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.LogLevel != "" && !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers: must be at least 1, got %d", c.Workers)
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("output.format: %q is not one of %s", c.Output.Format, strings.Join(outputFormats, ", "))
	}
	return nil
}

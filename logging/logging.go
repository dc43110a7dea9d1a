// Package logging builds the zap loggers used by the decoder and the CLI.
// Console output goes to stderr so that decoded data can be piped from
// stdout; an optional rotating JSON log file receives the same entries.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string
	// File enables JSON output to a rotating log file when non-empty.
	File       string
	FileWriter FileWriterConfig
	// Console defaults to os.Stderr.
	Console io.Writer
	Color   bool
}

// New builds a logger from cfg. The level applies to every output; an
// empty level means info.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Level != "" && !ValidLevel(cfg.Level) {
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}
	level := ParseLevel(cfg.Level, zapcore.InfoLevel)

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(NewConsoleEncoderConfig(cfg.Color)),
			zapcore.AddSync(console),
			level,
		),
	}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(NewEncoderConfig()),
			NewFileWriter(cfg.File, cfg.FileWriter),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// pngo decodes PNG files: it walks the chunk stream, verifies every CRC,
// inflates the image data and optionally writes the reconstructed pixels.
//
// Usage:
//
//	pngo [--config FILE] [--log-level LEVEL] [--log-file FILE] <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: at least one file failed to decode
//   - 2: usage or configuration error
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/shoccho/pnGo/config"
	"github.com/shoccho/pnGo/logging"
)

const (
	exitDecode = 1
	exitUsage  = 2
)

// session is what the commands share once Before has run.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	// A missing .env is fine; variables may come from the real environment.
	_ = godotenv.Load()

	app := newApp(os.Stdout, os.Stderr)
	app.ExitErrHandler = exitErrHandler
	if err := app.Run(os.Args); err != nil {
		// Flag parsing errors do not go through ExitErrHandler.
		os.Exit(exitUsage)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	s := &session{}
	return &cli.App{
		Name:      "pngo",
		Usage:     "decode and verify PNG files",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config `FILE`"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-file", Usage: "also write JSON logs to `FILE`"},
		},
		Before: s.setup,
		After:  s.teardown,
		Commands: []*cli.Command{
			s.decodeCommand(),
			s.inspectCommand(),
			s.checkCommand(),
		},
	}
}

func (s *session) setup(c *cli.Context) error {
	cfg, err := config.Resolve(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}

	logger, err := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: c.App.ErrWriter,
		Color:   !color.NoColor,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	s.cfg = cfg
	s.logger = logger
	return nil
}

func (s *session) teardown(*cli.Context) error {
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	return nil
}

// exitErrHandler keeps the exit code of cli.Exit errors.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		if msg := exitCoder.Error(); msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitUsage)
}

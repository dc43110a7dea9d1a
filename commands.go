package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoccho/pnGo/pngDecoder"
	"github.com/shoccho/pnGo/pngerr"
	"github.com/shoccho/pnGo/utils"
)

func (s *session) options(c *cli.Context) pngDecoder.Options {
	return pngDecoder.Options{
		StrictAdler32: s.cfg.StrictAdler32 || c.Bool("strict"),
		Logger:        s.logger,
	}
}

func strictFlag() cli.Flag {
	return &cli.BoolFlag{Name: "strict", Usage: "verify the Adler-32 trailer of the image data"}
}

func (s *session) decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a PNG and optionally write its pixels or raw scanlines",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			strictFlag(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the image to `FILE`"},
			&cli.StringFlag{Name: "format", Usage: "image format for --out, ppm or bmp"},
			&cli.StringFlag{Name: "raw", Usage: "write the decompressed, still filtered, scanlines to `FILE`"},
		},
		Action: s.decodeAction,
	}
}

func (s *session) decodeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("decode: exactly one file required", exitUsage)
	}
	path := c.Args().First()

	format := s.cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	if format != "ppm" && format != "bmp" {
		return cli.Exit(fmt.Sprintf("decode: unknown format %q", format), exitUsage)
	}

	img, err := pngDecoder.Open(path, s.options(c))
	if err != nil {
		return cli.Exit(err.Error(), exitDecode)
	}
	h := img.Header
	s.logger.Info("decoded",
		zap.String("file", path),
		zap.Uint32("width", h.Width),
		zap.Uint32("height", h.Height),
		zap.Uint8("bit_depth", h.BitDepth),
		zap.Stringer("color_type", h.ColorType),
		zap.Int("bytes", len(img.Data)))

	if raw := c.String("raw"); raw != "" {
		if err := os.WriteFile(raw, img.Data, 0o644); err != nil {
			return cli.Exit(err.Error(), exitDecode)
		}
	}
	if out := c.String("out"); out != "" {
		pixels, err := img.NRGBA()
		if err != nil {
			return cli.Exit(fmt.Sprintf("%s: %v", path, err), exitDecode)
		}
		if err := utils.CreateImageFile(out, format, pixels); err != nil {
			return cli.Exit(err.Error(), exitDecode)
		}
		s.logger.Info("wrote image", zap.String("file", out), zap.String("format", format))
	}
	return nil
}

func (s *session) checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Decode files in parallel and report which are valid",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			strictFlag(),
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "files decoded at once"},
		},
		Action: s.checkAction,
	}
}

func (s *session) checkAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("check: at least one file required", exitUsage)
	}
	workers := s.cfg.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}
	if workers < 1 {
		return cli.Exit("check: --workers must be at least 1", exitUsage)
	}

	// Each decode has its own session state, so files are independent.
	opts := s.options(c)
	results := make([]error, len(files))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			_, results[i] = pngDecoder.Open(path, opts)
			return nil
		})
	}
	_ = g.Wait()

	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	failed := 0
	for i, path := range files {
		if err := results[i]; err != nil {
			failed++
			fmt.Fprintf(c.App.Writer, "%s [%s] %v\n", fail("FAIL"), failKind(err), err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s %s\n", ok("OK"), path)
	}

	s.logger.Debug("check finished", zap.Int("files", len(files)), zap.Int("failed", failed))
	if failed > 0 {
		return cli.Exit("", exitDecode)
	}
	return nil
}

func failKind(err error) string {
	if k := pngerr.KindOf(err); k != pngerr.Unknown {
		return k.String()
	}
	return "io error"
}

// Command grayscott runs a session headless to its target step count and
// writes the final field as a grayscale PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"gray-scott/internal/core"
	"gray-scott/internal/render"
	"gray-scott/internal/sims/grayscott"
)

func main() {
	cfg := grayscott.DefaultConfig()
	fs := flag.CommandLine
	cfg.Bind(fs)
	configPath := fs.String("config", "", "JSON config file; explicit flags override it")
	backend := fs.String("backend", "auto", "compute backend: auto, serial or pool")
	out := fs.String("out", "grayscott.png", "output PNG path")
	scale := fs.Int("scale", 1, "nearest-neighbour upscale factor")
	field := fs.String("field", "v", "field to export: u or v")
	normalize := fs.String("normalize", string(render.ModeRange), "tone mapping: range or absolute")
	check := fs.Bool("check", false, "fail if a field value leaves [0,1]")
	verbose := fs.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cfg.OverlayFile(fs, *configPath); err != nil {
		fatal(err)
	}
	mode, err := render.ParseMode(*normalize)
	if err != nil {
		fatal(err)
	}
	if *field != "u" && *field != "v" {
		fatal(fmt.Errorf("unknown field %q", *field))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := run(ctx, cfg, *backend, *check)
	if err != nil {
		fatal(err)
	}
	values := result.V
	if *field == "u" {
		values = result.U
	}
	img, err := render.GrayImage(values, result.Size.W, result.Size.H, mode)
	if err != nil {
		fatal(err)
	}
	if err := render.SavePNG(*out, img, *scale); err != nil {
		fatal(err)
	}
	core.Logger().Info("wrote image", "path", *out, "field", *field, "step", result.Step)
}

func run(ctx context.Context, cfg grayscott.Config, backend string, check bool) (grayscott.Output, error) {
	cfg, warnings := cfg.Sanitize()
	for _, w := range warnings {
		core.Logger().Warn("parameter clamped", "warning", w)
	}

	ctrl := grayscott.NewControllerWithBackend(backend)
	ctrl.CheckBounds = check
	defer ctrl.Close()

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return grayscott.Output{}, fmt.Errorf("interrupted at step %d: %w", ctrl.Step(), err)
		}
		out, err := ctrl.Invoke(grayscott.Input{Run: true, Config: cfg})
		if err != nil {
			return out, err
		}
		core.Logger().Debug("progress", "step", out.Step, "target", out.Target, "percent", fmt.Sprintf("%.1f", out.Progress))
		if !out.More {
			core.Logger().Info("session complete",
				"steps", out.Step, "backend", out.Backend, "elapsed", time.Since(start).Round(time.Millisecond))
			return out, nil
		}
	}
}

func fatal(err error) {
	core.Logger().Error("grayscott failed", "err", err)
	os.Exit(1)
}

// Command grayscott-shader exports the step kernel as WGSL or compiled
// SPIR-V, optionally with the uniform block for a given configuration.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gray-scott/internal/core"
	"gray-scott/internal/shader"
	"gray-scott/internal/sims/grayscott"
)

func main() {
	cfg := grayscott.DefaultConfig()
	cfg.Bind(flag.CommandLine)
	out := flag.String("out", "-", "output path, - for stdout")
	format := flag.String("format", "", "wgsl or spirv; inferred from -out when empty")
	uniforms := flag.String("uniforms", "", "also write the 32-byte uniform block for the config here")
	flag.Parse()

	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := export(*out, *format, *uniforms, cfg); err != nil {
		core.Logger().Error("grayscott-shader failed", "err", err)
		os.Exit(1)
	}
}

func export(out, format, uniformsPath string, cfg grayscott.Config) error {
	if format == "" {
		format = "wgsl"
		if filepath.Ext(out) == ".spv" {
			format = "spirv"
		}
	}
	var data []byte
	switch format {
	case "wgsl":
		data = []byte(shader.Source())
	case "spirv":
		spirv, err := shader.CompileSPIRV()
		if err != nil {
			return err
		}
		data = spirv
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err := writeOutput(out, data); err != nil {
		return err
	}
	core.Logger().Info("exported kernel", "format", format, "bytes", len(data), "out", out)

	if uniformsPath == "" {
		return nil
	}
	cfg, warnings := cfg.Sanitize()
	for _, w := range warnings {
		core.Logger().Warn("parameter clamped", "warning", w)
	}
	u := uniformsFor(cfg)
	core.Logger().Info("uniforms", "width", u.Width, "height", u.Height,
		"workgroups", shader.Workgroups(cfg.Width*cfg.Height))
	return writeOutput(uniformsPath, u.Bytes())
}

func uniformsFor(cfg grayscott.Config) shader.Uniforms {
	return shader.Uniforms{
		Width:      uint32(cfg.Width),
		Height:     uint32(cfg.Height),
		DiffusionU: cfg.Params.DiffusionU,
		DiffusionV: cfg.Params.DiffusionV,
		Feed:       cfg.Params.Feed,
		Kill:       cfg.Params.Kill,
		DT:         cfg.Params.DT,
	}
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

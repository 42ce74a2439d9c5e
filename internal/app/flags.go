package app

import (
	"flag"

	"gray-scott/internal/render"
)

// Config holds viewer options. Simulation parameters live in grayscott.Config.
type Config struct {
	Scale      int
	TPS        int
	PanelWidth int
	Backend    string
	Mode       string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Scale: 4, TPS: 30, PanelWidth: 220, Backend: "auto", Mode: string(render.ModeRange)}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "batches per second")
	fs.IntVar(&c.PanelWidth, "panel", c.PanelWidth, "control panel width in pixels, 0 hides it")
	fs.StringVar(&c.Backend, "backend", c.Backend, "compute backend: auto, serial or pool")
	fs.StringVar(&c.Mode, "normalize", c.Mode, "tone mapping: range or absolute")
}

// RenderMode parses Mode, falling back to range normalization.
func (c *Config) RenderMode() render.Mode {
	m, err := render.ParseMode(c.Mode)
	if err != nil {
		return render.ModeRange
	}
	return m
}

package grayscott

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gray-scott/internal/core"
)

// Params holds the reaction-diffusion coefficients.
type Params struct {
	DiffusionU float32 `json:"diffusionU"`
	DiffusionV float32 `json:"diffusionV"`
	Feed       float32 `json:"feed"`
	Kill       float32 `json:"kill"`
	DT         float32 `json:"dt"`
}

// Config describes one simulation session request.
type Config struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`

	// Steps is the target step count of the session.
	Steps int `json:"steps"`
	// BatchSize is the number of steps run per invocation. Zero means run to
	// completion in one invocation.
	BatchSize int `json:"batchSize"`

	Params Params `json:"params"`
}

const (
	minDT = 0.001
	maxDT = 10.0
)

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:     128,
		Height:    128,
		Seed:      1,
		Steps:     1500,
		BatchSize: 10,
		Params: Params{
			DiffusionU: 0.16,
			DiffusionV: 0.08,
			Feed:       0.029,
			Kill:       0.057,
			DT:         1.0,
		},
	}
}

// Grid returns the lattice described by the config.
func (c Config) Grid() core.Grid { return core.Grid{W: c.Width, H: c.Height} }

// Sanitize clamps every field into its valid range and returns one warning
// per adjustment. Values are never rejected.
func (c Config) Sanitize() (Config, []string) {
	var warnings []string
	if c.Width < core.MinGridSide {
		warnings = append(warnings, fmt.Sprintf("Set width to minimum of %d cells.", core.MinGridSide))
		c.Width = core.MinGridSide
	}
	if c.Height < core.MinGridSide {
		warnings = append(warnings, fmt.Sprintf("Set height to minimum of %d cells.", core.MinGridSide))
		c.Height = core.MinGridSide
	}
	c.Params.DiffusionU = clampParam(&warnings, "Diffusion U", c.Params.DiffusionU, 0, 1)
	c.Params.DiffusionV = clampParam(&warnings, "Diffusion V", c.Params.DiffusionV, 0, 1)
	c.Params.Feed = clampParam(&warnings, "Feed Rate", c.Params.Feed, 0, 1)
	c.Params.Kill = clampParam(&warnings, "Kill Rate", c.Params.Kill, 0, 1)
	c.Params.DT = clampParam(&warnings, "Time Step", c.Params.DT, minDT, maxDT)
	if c.Steps < 0 {
		warnings = append(warnings, "Set Steps to minimum of 0.")
		c.Steps = 0
	}
	if c.BatchSize > c.Steps {
		warnings = append(warnings, "OutputSteps > Steps. Setting to Steps.")
		c.BatchSize = c.Steps
	}
	if c.BatchSize < 1 {
		c.BatchSize = c.Steps
	}
	return c, warnings
}

func clampParam(warnings *[]string, label string, v, lo, hi float32) float32 {
	// NaN compares false against both bounds and would slip through.
	if v != v {
		*warnings = append(*warnings, fmt.Sprintf("%s is not a number. Set to %s.", label, formatBound(lo)))
		return lo
	}
	if v < lo || v > hi {
		*warnings = append(*warnings, fmt.Sprintf("%s out of range [%s - %s]. Clamped.", label, formatBound(lo), formatBound(hi)))
	}
	return min(max(v, lo), hi)
}

func formatBound(v float32) string {
	if v < 0.01 && v > 0 {
		return strconv.FormatFloat(float64(v), 'f', 3, 32)
	}
	return strconv.FormatFloat(float64(v), 'f', 2, 32)
}

// FromMap populates a Config from a string map (flag-style key/value pairs).
// Unparseable values keep their defaults; range checks are left to Sanitize.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	c.Apply(cfg)
	return c
}

// Apply overlays key/value pairs onto the config and reports how many keys
// were recognised and parsed.
func (c *Config) Apply(kv map[string]string) int {
	applied := 0
	for key, raw := range kv {
		if c.set(key, raw) {
			applied++
		}
	}
	return applied
}

func (c *Config) set(key, raw string) bool {
	switch key {
	case "w", "width":
		return setInt(&c.Width, raw)
	case "h", "height":
		return setInt(&c.Height, raw)
	case "steps":
		return setInt(&c.Steps, raw)
	case "batch", "output_steps":
		return setInt(&c.BatchSize, raw)
	case "seed":
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			c.Seed = parsed
			return true
		}
	case "du", "diffusion_u":
		return setFloat(&c.Params.DiffusionU, raw)
	case "dv", "diffusion_v":
		return setFloat(&c.Params.DiffusionV, raw)
	case "feed", "f":
		return setFloat(&c.Params.Feed, raw)
	case "kill", "k":
		return setFloat(&c.Params.Kill, raw)
	case "dt":
		return setFloat(&c.Params.DT, raw)
	}
	return false
}

func setInt(dst *int, raw string) bool {
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	*dst = parsed
	return true
}

func setFloat(dst *float32, raw string) bool {
	parsed, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return false
	}
	*dst = float32(parsed)
	return true
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "w", c.Width, "grid width in cells (min 3)")
	fs.IntVar(&c.Height, "h", c.Height, "grid height in cells (min 3)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the initial noise field")
	fs.IntVar(&c.Steps, "steps", c.Steps, "total simulation steps")
	fs.IntVar(&c.BatchSize, "batch", c.BatchSize, "steps per invocation, 0 runs to completion")
	fs.Var((*float32Value)(&c.Params.DiffusionU), "du", "diffusion rate of U [0-1]")
	fs.Var((*float32Value)(&c.Params.DiffusionV), "dv", "diffusion rate of V [0-1]")
	fs.Var((*float32Value)(&c.Params.Feed), "feed", "feed rate [0-1]")
	fs.Var((*float32Value)(&c.Params.Kill), "kill", "kill rate [0-1]")
	fs.Var((*float32Value)(&c.Params.DT), "dt", "integration time step [0.001-10]")
}

type float32Value float32

func (f *float32Value) String() string {
	if f == nil {
		return "0"
	}
	return strconv.FormatFloat(float64(*f), 'g', -1, 32)
}

func (f *float32Value) Set(s string) error {
	parsed, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*f = float32Value(parsed)
	return nil
}

// LoadConfigFile overlays the JSON document at path onto base. Fields absent
// from the file keep their base values.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("grayscott: read config: %w", err)
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("grayscott: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// OverlayFile loads the JSON document at path onto c, then re-applies every
// flag explicitly set on fs so command-line values win over the file. An
// empty path is a no-op.
func (c *Config) OverlayFile(fs *flag.FlagSet, path string) error {
	if path == "" {
		return nil
	}
	explicit := map[string]string{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })
	loaded, err := LoadConfigFile(path, *c)
	if err != nil {
		return err
	}
	*c = loaded
	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("grayscott: reapply -%s: %w", name, err)
		}
	}
	return nil
}

package grayscott

import (
	"strconv"

	"gray-scott/internal/core"
)

// Parameters reports the config as grouped key/value pairs. Keys match the
// ones accepted by FromMap.
func (c *Config) Parameters() core.ParameterSnapshot {
	p := c.Params
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("w", "Width", c.Width),
				intParam("h", "Height", c.Height),
				int64Param("seed", "Seed", c.Seed),
			},
		},
		{
			Name:    "Reaction",
			Summary: "Gray-Scott coefficients",
			Params: []core.Parameter{
				floatParam("du", "Diffusion U", p.DiffusionU),
				floatParam("dv", "Diffusion V", p.DiffusionV),
				floatParam("feed", "Feed rate", p.Feed),
				floatParam("kill", "Kill rate", p.Kill),
				floatParam("dt", "Time step", p.DT),
			},
		},
		{
			Name: "Run",
			Params: []core.Parameter{
				intParam("steps", "Steps", c.Steps),
				intParam("batch", "Batch size", c.BatchSize),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the HUD-adjustable parameters.
func (c *Config) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "feed", Label: "Feed", Type: core.ParamTypeFloat, Step: 0.001, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "kill", Label: "Kill", Type: core.ParamTypeFloat, Step: 0.001, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "du", Label: "Diffusion U", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "dv", Label: "Diffusion V", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "dt", Label: "Time step", Type: core.ParamTypeFloat, Step: 0.1, Min: minDT, Max: maxDT, HasMin: true, HasMax: true},
		{Key: "steps", Label: "Steps", Type: core.ParamTypeInt, Step: 500, Min: 0, HasMin: true},
		{Key: "batch", Label: "Batch", Type: core.ParamTypeInt, Step: 5, Min: 1, HasMin: true},
		{Key: "seed", Label: "Seed", Type: core.ParamTypeInt, Step: 1},
	}
}

// SetIntParameter updates an integer parameter by key.
func (c *Config) SetIntParameter(key string, value int) bool {
	switch key {
	case "w", "width":
		c.Width = value
	case "h", "height":
		c.Height = value
	case "steps":
		c.Steps = value
	case "batch", "output_steps":
		c.BatchSize = value
	case "seed":
		c.Seed = int64(value)
	default:
		return false
	}
	return true
}

// SetFloatParameter updates a floating point parameter by key.
func (c *Config) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "du", "diffusion_u":
		c.Params.DiffusionU = float32(value)
	case "dv", "diffusion_v":
		c.Params.DiffusionV = float32(value)
	case "feed", "f":
		c.Params.Feed = float32(value)
	case "kill", "k":
		c.Params.Kill = float32(value)
	case "dt":
		c.Params.DT = float32(value)
	default:
		return false
	}
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float32) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(float64(value), 'f', -1, 32),
	}
}

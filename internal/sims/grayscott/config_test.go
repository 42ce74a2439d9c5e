package grayscott

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestSanitizeClampsAndWarns(t *testing.T) {
	cfg := Config{
		Width:     1,
		Height:    2,
		Steps:     -5,
		BatchSize: 3,
		Params: Params{
			DiffusionU: -0.5,
			DiffusionV: 1.5,
			Feed:       2,
			Kill:       -1,
			DT:         50,
		},
	}
	got, warnings := cfg.Sanitize()
	if got.Width != 3 || got.Height != 3 {
		t.Fatalf("size %dx%d, want 3x3", got.Width, got.Height)
	}
	want := Params{DiffusionU: 0, DiffusionV: 1, Feed: 1, Kill: 0, DT: 10}
	if got.Params != want {
		t.Fatalf("params %+v, want %+v", got.Params, want)
	}
	if got.Steps != 0 || got.BatchSize != 0 {
		t.Fatalf("steps %d batch %d, want 0 and 0", got.Steps, got.BatchSize)
	}
	// width, height, five params, steps, batch
	if len(warnings) != 9 {
		t.Fatalf("got %d warnings: %q", len(warnings), warnings)
	}
	if !strings.Contains(strings.Join(warnings, "\n"), "Time Step out of range [0.001 - 10.00]") {
		t.Fatalf("missing dt warning: %q", warnings)
	}
}

func TestSanitizeDefaultsAreClean(t *testing.T) {
	cfg, warnings := DefaultConfig().Sanitize()
	if len(warnings) != 0 {
		t.Fatalf("default config produced warnings: %q", warnings)
	}
	if cfg != DefaultConfig() {
		t.Fatal("Sanitize altered a valid config")
	}
}

func TestSanitizeBatchMeansCompletion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 0
	got, warnings := cfg.Sanitize()
	if got.BatchSize != cfg.Steps || len(warnings) != 0 {
		t.Fatalf("batch %d warnings %q, want %d and none", got.BatchSize, warnings, cfg.Steps)
	}
}

func TestSanitizeReplacesNaN(t *testing.T) {
	cfg := DefaultConfig()
	nan, _ := strconv.ParseFloat("NaN", 32)
	cfg.Params.Feed = float32(nan)
	got, warnings := cfg.Sanitize()
	if got.Params.Feed != 0 || len(warnings) != 1 {
		t.Fatalf("feed %v warnings %q", got.Params.Feed, warnings)
	}
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":     "64",
		"h":     "32",
		"seed":  "-9",
		"feed":  "0.0367",
		"kill":  "0.0649",
		"dt":    "bogus",
		"steps": "200",
		"batch": "0",
	})
	if cfg.Width != 64 || cfg.Height != 32 || cfg.Seed != -9 || cfg.Steps != 200 || cfg.BatchSize != 0 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Params.Feed != 0.0367 || cfg.Params.Kill != 0.0649 {
		t.Fatalf("unexpected params %+v", cfg.Params)
	}
	if cfg.Params.DT != DefaultConfig().Params.DT {
		t.Fatal("unparseable value must keep the default")
	}
	if n := cfg.Apply(map[string]string{"nope": "1", "du": "0.2"}); n != 1 {
		t.Fatalf("Apply recognised %d keys, want 1", n)
	}
}

func TestBindFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-w", "40", "-feed", "0.05", "-dt", "0.5", "-seed", "3"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 40 || cfg.Params.Feed != 0.05 || cfg.Params.DT != 0.5 || cfg.Seed != 3 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gs.json")
	doc := `{"width": 50, "params": {"feed": 0.04}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 50 || cfg.Params.Feed != 0.04 {
		t.Fatalf("file not applied: %+v", cfg)
	}
	if cfg.Height != 128 || cfg.Params.Kill != 0.057 {
		t.Fatal("fields absent from the file must keep their base values")
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.json"), DefaultConfig()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOverlayFileFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gs.json")
	doc := `{"width": 50, "height": 60, "params": {"feed": 0.04}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-w", "20", "-kill", "0.06"}); err != nil {
		t.Fatal(err)
	}
	if err := cfg.OverlayFile(fs, path); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 20 || cfg.Params.Kill != 0.06 {
		t.Fatalf("explicit flags lost: %+v", cfg)
	}
	if cfg.Height != 60 || cfg.Params.Feed != 0.04 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if err := cfg.OverlayFile(fs, ""); err != nil {
		t.Fatalf("empty path: %v", err)
	}
}

func TestParameterSetters(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.SetFloatParameter("feed", 0.045) || !cfg.SetIntParameter("steps", 10) {
		t.Fatal("known keys rejected")
	}
	if cfg.SetFloatParameter("w", 1) || cfg.SetIntParameter("feed", 1) {
		t.Fatal("keys accepted for the wrong type")
	}
	p, ok := cfg.Parameters().Lookup("feed")
	if !ok || p.Value != "0.045" {
		t.Fatalf("feed parameter = %+v", p)
	}
	for _, ctrl := range cfg.ParameterControls() {
		if _, ok := cfg.Parameters().Lookup(ctrl.Key); !ok {
			t.Fatalf("control %q has no parameter", ctrl.Key)
		}
	}
}

//go:build ebiten

// Command grayscott-view runs a session in a window with a control panel.
package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"gray-scott/internal/app"
	"gray-scott/internal/core"
	"gray-scott/internal/sims/grayscott"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	opts := app.NewConfig()
	opts.Bind(flag.CommandLine)
	cfg := grayscott.DefaultConfig()
	cfg.Bind(flag.CommandLine)
	configPath := flag.String("config", "", "JSON config file; explicit flags override it")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cfg.OverlayFile(flag.CommandLine, *configPath); err != nil {
		log.Fatal(err)
	}

	game := app.New(&cfg, opts)
	defer game.Close()
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("Gray-Scott")
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

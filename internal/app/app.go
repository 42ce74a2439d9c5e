//go:build ebiten

package app

import (
	"fmt"
	"image/color"
	"slices"
	"time"

	"gray-scott/internal/core"
	"gray-scott/internal/render"
	"gray-scott/internal/sims/grayscott"
	"gray-scott/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a grayscott controller to the ebiten.Game interface. The HUD
// edits cfg in place; every invocation runs on the sanitized copy, so a
// changed session parameter reinitializes on the next batch.
type Game struct {
	cfg     *grayscott.Config
	ctrl    *grayscott.Controller
	opts    *Config
	pacer   *core.FixedStep
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay

	onColor  color.Color
	offColor color.Color

	running  bool
	tickOnce bool
	out      grayscott.Output
	warnings []string
	err      error
}

// New constructs a Game for cfg using the viewer options opts.
func New(cfg *grayscott.Config, opts *Config) *Game {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	g := &Game{
		cfg:      cfg,
		ctrl:     grayscott.NewControllerWithBackend(opts.Backend),
		opts:     opts,
		pacer:    core.NewFixedStep(opts.TPS),
		overlay:  ui.NewOverlay(opts.Scale, opts.RenderMode()),
		onColor:  color.White,
		offColor: color.Black,
		running:  true,
	}
	g.hud = ui.NewHUD(cfg, "Gray-Scott", opts.PanelWidth)
	g.sanitized()
	return g
}

// Close releases the live session.
func (g *Game) Close() { g.ctrl.Close() }

// Reset disposes the session; the next run starts again from step zero.
func (g *Game) Reset() {
	g.out, g.err = g.ctrl.Invoke(grayscott.Input{Reset: true})
	g.running = false
	g.tickOnce = false
}

// Reseed changes the seed, which restarts the session on the next batch.
func (g *Game) Reseed(seed int64) {
	g.cfg.Seed = seed
	g.running = true
}

func (g *Game) sanitized() grayscott.Config {
	cfg, warnings := g.cfg.Sanitize()
	if !slices.Equal(warnings, g.warnings) {
		for _, w := range warnings {
			core.Logger().Warn("view: parameter clamped", "warning", w)
		}
		g.warnings = warnings
		g.hud.SetWarnings(warnings)
	}
	return cfg
}

// Update handles per-frame input and invokes the controller when a batch is due.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.running = !g.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reseed(time.Now().UnixNano())
	}

	g.hud.Update(g.viewWidth())
	if g.hud.Changed() {
		g.running = true
	}
	g.overlay.Update()

	for due := g.pacer.Due(); due > 0 && (g.running || g.tickOnce); due-- {
		g.invoke()
		g.tickOnce = false
	}
	g.hud.SetStatus(g.status()...)
	return nil
}

func (g *Game) invoke() {
	out, err := g.ctrl.Invoke(grayscott.Input{Run: true, Config: g.sanitized()})
	g.out, g.err = out, err
	if err != nil || !out.More {
		g.running = false
	}
}

func (g *Game) status() []string {
	state := "paused"
	if g.running {
		state = "running"
	}
	lines := []string{
		fmt.Sprintf("Step %d / %d", g.out.Step, g.out.Target),
		fmt.Sprintf("%.1f%% %s", g.out.Progress, state),
	}
	if g.out.Backend != "" {
		lines = append(lines, "Backend "+g.out.Backend)
	}
	if g.err != nil {
		lines = append(lines, "Error: "+g.err.Error())
	}
	return lines
}

// Draw renders the V field, the overlay and the control panel.
func (g *Game) Draw(screen *ebiten.Image) {
	size := g.out.Size
	if size.Cells() > 0 {
		if g.painter == nil {
			g.painter = render.NewGridPainter(size.W, size.H, g.opts.RenderMode())
		} else if w, h := g.painter.Size(); w != size.W || h != size.H {
			g.painter = render.NewGridPainter(size.W, size.H, g.opts.RenderMode())
		}
		g.painter.Blit(screen, g.out.V, g.onColor, g.offColor, g.opts.Scale)
		g.overlay.Draw(screen, g.out, g.out.Progress)
	}
	_, height := g.Layout(0, 0)
	g.hud.Draw(screen, g.viewWidth(), height)
}

func (g *Game) viewWidth() int {
	cfg, _ := g.cfg.Sanitize()
	return cfg.Width * g.opts.Scale
}

// Layout returns the logical screen size: the scaled grid plus the panel.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg, _ := g.cfg.Sanitize()
	return cfg.Width*g.opts.Scale + g.hud.Width(), cfg.Height * g.opts.Scale
}

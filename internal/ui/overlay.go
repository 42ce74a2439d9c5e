//go:build ebiten

package ui

import (
	"fmt"
	"image/color"

	"gray-scott/internal/core"
	"gray-scott/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	activatorTint = color.RGBA{R: 64, G: 164, B: 223, A: 0}
	progressColor = color.RGBA{R: 255, G: 120, B: 40, A: 220}
	probeColor    = color.RGBA{R: 240, G: 240, B: 120, A: 255}
)

const (
	tintAlpha      = 140
	progressHeight = 3
)

// Overlay draws optional visuals over the V field: a U tint (key U), a
// cursor probe showing both concentrations (key P) and a progress bar.
type Overlay struct {
	scale     int
	mode      render.Mode
	showU     bool
	showProbe bool

	tint  *render.GridPainter
	pixel *ebiten.Image
}

// NewOverlay constructs an overlay for a view drawn at scale.
func NewOverlay(scale int, mode render.Mode) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	o := &Overlay{scale: scale, mode: mode}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles overlay layers.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		o.showU = !o.showU
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		o.showProbe = !o.showProbe
	}
}

// Draw renders the enabled layers for fields f at the given progress percent.
func (o *Overlay) Draw(screen *ebiten.Image, f core.FieldProvider, progress float64) {
	size := f.FieldSize()
	if size.Cells() == 0 {
		return
	}
	if o.showU {
		if o.tint == nil {
			o.tint = render.NewGridPainter(size.W, size.H, o.mode)
		} else if w, h := o.tint.Size(); w != size.W || h != size.H {
			o.tint = render.NewGridPainter(size.W, size.H, o.mode)
		}
		o.tint.BlitTint(screen, f.FieldU(), activatorTint, tintAlpha, o.scale)
	}
	o.drawProgress(screen, size, progress)
	if o.showProbe {
		o.drawProbe(screen, f, size)
	}
}

func (o *Overlay) drawProgress(screen *ebiten.Image, size core.Size, progress float64) {
	if progress <= 0 {
		return
	}
	width := float64(size.W*o.scale) * min(progress, 100) / 100
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(width, progressHeight)
	op.GeoM.Translate(0, float64(size.H*o.scale-progressHeight))
	op.ColorScale.ScaleWithColor(progressColor)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawProbe(screen *ebiten.Image, f core.FieldProvider, size core.Size) {
	mx, my := ebiten.CursorPosition()
	x, y := mx/o.scale, my/o.scale
	if mx < 0 || my < 0 || x >= size.W || y >= size.H {
		return
	}
	i := y*size.W + x
	u, v := f.FieldU(), f.FieldV()
	if i >= len(u) || i >= len(v) {
		return
	}
	label := fmt.Sprintf("(%d,%d) U=%.3f V=%.3f", x, y, u[i], v[i])
	text.Draw(screen, label, basicfont.Face7x13, 6, 16, probeColor)
}

//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads a float field into a single RGBA image and draws it.
type GridPainter struct {
	w, h  int
	img   *ebiten.Image
	buf   []byte
	tones []uint8
	mode  Mode
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int, mode Mode) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h), tones: make([]uint8, w*h), mode: mode}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Blit maps values to gray tones between off and on and draws them scaled.
func (gp *GridPainter) Blit(dst *ebiten.Image, values []float32, on, off color.Color, scale int) {
	if len(values) != gp.w*gp.h {
		return
	}
	FillTones(gp.tones, values, gp.mode)
	fillGrayRGBA(gp.buf, gp.tones, on, off)
	gp.draw(dst, scale)
}

// BlitTint draws values as a translucent tint, used for overlays.
func (gp *GridPainter) BlitTint(dst *ebiten.Image, values []float32, tint color.RGBA, maxAlpha uint8, scale int) {
	if len(values) != gp.w*gp.h {
		return
	}
	FillTones(gp.tones, values, gp.mode)
	fillTintRGBA(gp.buf, gp.tones, tint, maxAlpha)
	gp.draw(dst, scale)
}

func (gp *GridPainter) draw(dst *ebiten.Image, scale int) {
	gp.img.WritePixels(gp.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }

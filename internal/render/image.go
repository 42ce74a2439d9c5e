// Package render maps concentration fields to grayscale images for export
// and on-screen preview.
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Mode selects how field values map onto the [0,255] tone range.
type Mode string

const (
	// ModeRange stretches the field's own min..max onto 0..255.
	ModeRange Mode = "range"
	// ModeAbsolute maps the fixed range 0..1 onto 0..255.
	ModeAbsolute Mode = "absolute"
)

// ParseMode validates a mode name; the empty string selects ModeRange.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRange:
		return ModeRange, nil
	case ModeAbsolute:
		return ModeAbsolute, nil
	}
	return "", fmt.Errorf("render: unknown mode %q", s)
}

// Tones converts values into 8-bit tones using the given mode.
func Tones(values []float32, mode Mode) []uint8 {
	out := make([]uint8, len(values))
	FillTones(out, values, mode)
	return out
}

// FillTones is Tones writing into dst, which must be at least len(values).
func FillTones(dst []uint8, values []float32, mode Mode) {
	if len(values) == 0 {
		return
	}
	lo, hi := float32(0), float32(1)
	if mode != ModeAbsolute {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	span := hi - lo
	if span <= 0 {
		clear(dst[:len(values)])
		return
	}
	for i, v := range values {
		t := (v - lo) / span
		t = min(max(t, 0), 1)
		dst[i] = uint8(t * 255)
	}
}

// GrayImage renders a row-major field of w*h values as a grayscale image.
func GrayImage(values []float32, w, h int, mode Mode) (*image.Gray, error) {
	if w <= 0 || h <= 0 || len(values) != w*h {
		return nil, fmt.Errorf("render: %d values do not fill a %dx%d image", len(values), w, h)
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	// NewGray packs rows with Stride == w, so Pix is row-major like values.
	FillTones(img.Pix, values, mode)
	return img, nil
}

// Upscale enlarges img by an integer factor with nearest-neighbour sampling so
// every cell stays a crisp square.
func Upscale(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// WritePNG encodes img, upscaled by scale, as PNG.
func WritePNG(w io.Writer, img image.Image, scale int) error {
	if err := png.Encode(w, Upscale(img, scale)); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path, creating or truncating the file.
func SavePNG(path string, img image.Image, scale int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("render: %w", cerr)
		}
	}()
	return WritePNG(f, img, scale)
}

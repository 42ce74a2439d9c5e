package render

import "image/color"

// fillGrayRGBA converts tone values into opaque RGBA pixels in buf, mixing
// between the off and on colors.
func fillGrayRGBA(buf []byte, tones []uint8, on, off color.Color) {
	rOn, gOn, bOn, _ := on.RGBA()
	rOff, gOff, bOff, _ := off.RGBA()
	for i, t := range tones {
		base := i * 4
		buf[base+0] = mix(rOff, rOn, t)
		buf[base+1] = mix(gOff, gOn, t)
		buf[base+2] = mix(bOff, bOn, t)
		buf[base+3] = 0xff
	}
}

// fillTintRGBA writes a translucent tint whose alpha follows the tone, for
// overlays drawn above the base field.
func fillTintRGBA(buf []byte, tones []uint8, tint color.RGBA, maxAlpha uint8) {
	for i, t := range tones {
		base := i * 4
		a := uint32(t) * uint32(maxAlpha) / 255
		// Premultiplied, as ebiten expects.
		buf[base+0] = uint8(uint32(tint.R) * a / 255)
		buf[base+1] = uint8(uint32(tint.G) * a / 255)
		buf[base+2] = uint8(uint32(tint.B) * a / 255)
		buf[base+3] = uint8(a)
	}
}

func mix(off, on uint32, t uint8) uint8 {
	lo, hi := off>>8, on>>8
	return uint8((lo*uint32(255-t) + hi*uint32(t) + 127) / 255)
}

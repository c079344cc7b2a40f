package stamp

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Checkboxes are drawn as a generated PNG glyph because the built-in PDF
// fonts have no ballot box characters. The glyph is rendered at 2x and scaled
// down to GlyphSize points when stamped.
const (
	// GlyphSize is the stamped checkbox size in points, independent of the
	// field's font size.
	GlyphSize = 18

	glyphPixels = 36
	strokeWidth = 3
	markInset   = 8
)

var (
	checkedGlyph   = renderGlyph(true)
	uncheckedGlyph = renderGlyph(false)
)

func renderGlyph(checked bool) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, glyphPixels, glyphPixels))
	black := color.NRGBA{A: 255}

	// Box border.
	for x := 0; x < glyphPixels; x++ {
		for y := 0; y < glyphPixels; y++ {
			if x < strokeWidth || x >= glyphPixels-strokeWidth ||
				y < strokeWidth || y >= glyphPixels-strokeWidth {
				img.SetNRGBA(x, y, black)
			}
		}
	}

	if checked {
		// X mark, both diagonals within the inset area.
		lo, hi := markInset, glyphPixels-markInset
		for x := lo; x < hi; x++ {
			for y := lo; y < hi; y++ {
				d1 := x - y
				d2 := x + y - (glyphPixels - 1)
				if abs(d1) < strokeWidth || abs(d2) < strokeWidth {
					img.SetNRGBA(x, y, black)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory NRGBA image cannot fail.
		panic(err)
	}
	return buf.Bytes()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

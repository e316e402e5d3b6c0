package colors

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// MinContrast is the WCAG AA ratio for normal text.
const MinContrast = 4.5

var (
	black = colorful.Color{}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

func (c PaletteColor) toColorful() colorful.Color {
	if c.RGB {
		return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	}
	return termenv.ConvertToRGB(termenv.ANSI256Color(c.EightBit))
}

func fromColorful(c colorful.Color) PaletteColor {
	return RGB(c.Clamped().RGB255())
}

// Luminance is the WCAG relative luminance, 0 for black and 1 for white.
func (c PaletteColor) Luminance() float64 {
	r, g, b := c.toColorful().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// IsLight reports whether c is closer to white than to black.
func (c PaletteColor) IsLight() bool {
	return c.Luminance() > 0.5
}

// ContrastRatio is the WCAG contrast ratio of a pair, from 1 (none) to 21.
func ContrastRatio(a, b PaletteColor) float64 {
	l1, l2 := a.Luminance(), b.Luminance()
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// EnsureContrast pushes fg away from bg in tenths until the pair reaches
// minRatio. A lighter fg is lightened, a darker one darkened; when even
// white or black falls short, whichever suits bg is returned.
func EnsureContrast(fg, bg PaletteColor, minRatio float64) PaletteColor {
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	target := black
	if fg.Luminance() > bg.Luminance() {
		target = white
	}
	from := fg.toColorful()
	for step := 1; step <= 10; step++ {
		c := fromColorful(from.BlendRgb(target, float64(step)/10))
		if ContrastRatio(c, bg) >= minRatio {
			return c
		}
	}
	if bg.IsLight() {
		return fromColorful(black)
	}
	return fromColorful(white)
}

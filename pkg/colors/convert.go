package colors

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// PaletteColor is either a 24-bit RGB color or an 8-bit (256 color) index.
type PaletteColor struct {
	RGB      bool
	R, G, B  uint8
	EightBit uint8
}

// RGB returns a 24-bit palette color.
func RGB(r, g, b uint8) PaletteColor {
	return PaletteColor{RGB: true, R: r, G: g, B: b}
}

// EightBit returns a 256-color palette entry.
func EightBit(n uint8) PaletteColor {
	return PaletteColor{EightBit: n}
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(hex string) (PaletteColor, error) {
	s := "#" + strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 7 {
		return PaletteColor{}, fmt.Errorf("invalid hex color %q", hex)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return PaletteColor{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return fromColorful(c), nil
}

// MustHex is ParseHex for the built-in palette tables.
func MustHex(hex string) PaletteColor {
	c, err := ParseHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns "#rrggbb" for RGB colors. 8-bit colors are approximated through
// the xterm 256 color table.
func (c PaletteColor) Hex() string {
	if c.RGB {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return termenv.ConvertToRGB(termenv.ANSI256Color(c.EightBit)).Hex()
}

// Lipgloss returns the color in the string form lipgloss.Color expects.
func (c PaletteColor) Lipgloss() string {
	if c.RGB {
		return c.Hex()
	}
	return strconv.Itoa(int(c.EightBit))
}

// Sequence returns the SGR parameters selecting this color, e.g.
// "48;2;r;g;b" or "48;5;n" for a background.
func (c PaletteColor) Sequence(bg bool) string {
	if c.RGB {
		prefix := termenv.Foreground
		if bg {
			prefix = termenv.Background
		}
		return fmt.Sprintf("%s;2;%d;%d;%d", prefix, c.R, c.G, c.B)
	}
	return termenv.ANSI256Color(c.EightBit).Sequence(bg)
}

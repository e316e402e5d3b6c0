package colors

import (
	"sort"
	"strings"
)

// Hue is the binary dark/light background convention.
type Hue int

const (
	HueDark Hue = iota
	HueLight
)

func (h Hue) String() string {
	if h == HueLight {
		return "light"
	}
	return "dark"
}

// Palette is the set of colors the tab line draws with.
type Palette struct {
	Hue Hue

	Fg      PaletteColor // inactive tab background
	Bg      PaletteColor
	Black   PaletteColor
	White   PaletteColor
	Red     PaletteColor // failure alerts
	Green   PaletteColor // active tab
	Yellow  PaletteColor
	Blue    PaletteColor
	Magenta PaletteColor
	Cyan    PaletteColor // success alerts
	Orange  PaletteColor // overflow indicators
	Gray    PaletteColor
}

// Text is the foreground used on colored tab backgrounds.
func (p Palette) Text() PaletteColor {
	if p.Hue == HueLight {
		return p.White
	}
	return p.Black
}

// Contrast is the foreground used on the line background itself.
func (p Palette) Contrast() PaletteColor {
	if p.Hue == HueLight {
		return p.Black
	}
	return p.White
}

// LineBackground fills the row behind the tabs.
func (p Palette) LineBackground() PaletteColor {
	if p.Hue == HueLight {
		return p.White
	}
	return p.Black
}

// Alternate is the background every other inactive tab uses when there are
// no arrow separators to tell neighbouring tabs apart.
func (p Palette) Alternate() PaletteColor {
	if p.Hue == HueLight {
		return p.Black
	}
	return p.White
}

// Legible returns fg, or a variant of it that reaches WCAG AA contrast on bg.
// 8-bit colors are returned unchanged.
func Legible(fg, bg PaletteColor) PaletteColor {
	if !fg.RGB || !bg.RGB {
		return fg
	}
	return EnsureContrast(fg, bg, MinContrast)
}

// Palettes holds the built-in palettes by name.
var Palettes = map[string]Palette{
	"rose-pine": {
		Hue:     HueDark,
		Fg:      MustHex("#908caa"), // Subtle
		Bg:      MustHex("#26233a"), // Overlay
		Black:   MustHex("#191724"), // Base
		White:   MustHex("#e0def4"), // Text
		Red:     MustHex("#eb6f92"), // Love
		Green:   MustHex("#9ccfd8"), // Foam
		Yellow:  MustHex("#f6c177"), // Gold
		Blue:    MustHex("#31748f"), // Pine
		Magenta: MustHex("#c4a7e7"), // Iris
		Cyan:    MustHex("#ebbcba"), // Rose
		Orange:  MustHex("#f6c177"),
		Gray:    MustHex("#6e6a86"), // Muted
	},
	"rose-pine-dawn": {
		Hue:     HueLight,
		Fg:      MustHex("#797593"),
		Bg:      MustHex("#f2e9e1"),
		Black:   MustHex("#575279"),
		White:   MustHex("#faf4ed"),
		Red:     MustHex("#b4637a"),
		Green:   MustHex("#286983"),
		Yellow:  MustHex("#ea9d34"),
		Blue:    MustHex("#56949f"),
		Magenta: MustHex("#907aa9"),
		Cyan:    MustHex("#56949f"),
		Orange:  MustHex("#d7827e"),
		Gray:    MustHex("#9893a5"),
	},
	"catppuccin-mocha": {
		Hue:     HueDark,
		Fg:      MustHex("#9399b2"),
		Bg:      MustHex("#313244"),
		Black:   MustHex("#1e1e2e"),
		White:   MustHex("#cdd6f4"),
		Red:     MustHex("#f38ba8"),
		Green:   MustHex("#a6e3a1"),
		Yellow:  MustHex("#f9e2af"),
		Blue:    MustHex("#89b4fa"),
		Magenta: MustHex("#f5c2e7"),
		Cyan:    MustHex("#94e2d5"),
		Orange:  MustHex("#fab387"),
		Gray:    MustHex("#585b70"),
	},
	"catppuccin-latte": {
		Hue:     HueLight,
		Fg:      MustHex("#7c7f93"),
		Bg:      MustHex("#ccd0da"),
		Black:   MustHex("#4c4f69"),
		White:   MustHex("#eff1f5"),
		Red:     MustHex("#d20f39"),
		Green:   MustHex("#40a02b"),
		Yellow:  MustHex("#df8e1d"),
		Blue:    MustHex("#1e66f5"),
		Magenta: MustHex("#ea76cb"),
		Cyan:    MustHex("#179299"),
		Orange:  MustHex("#fe640b"),
		Gray:    MustHex("#acb0be"),
	},
	"dracula": {
		Hue:     HueDark,
		Fg:      MustHex("#6272a4"),
		Bg:      MustHex("#44475a"),
		Black:   MustHex("#282a36"),
		White:   MustHex("#f8f8f2"),
		Red:     MustHex("#ff5555"),
		Green:   MustHex("#50fa7b"),
		Yellow:  MustHex("#f1fa8c"),
		Blue:    MustHex("#bd93f9"),
		Magenta: MustHex("#ff79c6"),
		Cyan:    MustHex("#8be9fd"),
		Orange:  MustHex("#ffb86c"),
		Gray:    MustHex("#44475a"),
	},
}

// DefaultPalette is an 8-bit palette that works on any 256 color terminal.
func DefaultPalette(hue Hue) Palette {
	return Palette{
		Hue:     hue,
		Fg:      EightBit(250),
		Bg:      EightBit(238),
		Black:   EightBit(16),
		White:   EightBit(255),
		Red:     EightBit(124),
		Green:   EightBit(154),
		Yellow:  EightBit(166),
		Blue:    EightBit(45),
		Magenta: EightBit(201),
		Cyan:    EightBit(51),
		Orange:  EightBit(208),
		Gray:    EightBit(238),
	}
}

// PaletteFor returns the named palette. "default", "" and unknown names give
// the 8-bit default palette for hue; ok reports whether name was known.
func PaletteFor(name string, hue Hue) (p Palette, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "default" {
		return DefaultPalette(hue), true
	}
	if p, ok := Palettes[name]; ok {
		return p, true
	}
	return DefaultPalette(hue), false
}

// PaletteNames lists the built-in palette names, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(Palettes)+1)
	names = append(names, "default")
	for name := range Palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

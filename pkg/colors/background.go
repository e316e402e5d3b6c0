package colors

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// ThemeMode selects how the dark/light hue is decided.
type ThemeMode string

const (
	ThemeModeAuto  ThemeMode = "auto"
	ThemeModeDark  ThemeMode = "dark"
	ThemeModeLight ThemeMode = "light"
)

// ParseThemeMode accepts "auto", "dark" or "light" (case-insensitive).
func ParseThemeMode(s string) (ThemeMode, bool) {
	switch ThemeMode(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeModeAuto, "":
		return ThemeModeAuto, true
	case ThemeModeDark:
		return ThemeModeDark, true
	case ThemeModeLight:
		return ThemeModeLight, true
	}
	return "", false
}

// probe inspects one source of information about the terminal background.
// ok is false when the source says nothing.
type probe func() (dark bool, color string, ok bool)

// BackgroundDetector decides whether the terminal background is dark. In
// auto mode it asks, in order: COLORFGBG, the terminal itself (OSC 11), the
// iTerm2 profile name and the Ghostty config. Nothing conclusive means dark.
type BackgroundDetector struct {
	mode   ThemeMode
	probes []probe

	resolved bool
	dark     bool
	color    string
}

func NewBackgroundDetector(mode ThemeMode) *BackgroundDetector {
	return &BackgroundDetector{
		mode:   mode,
		probes: []probe{probeColorFGBG, probeTerminal, probeITerm, probeGhostty},
	}
}

// Hue resolves the mode to the binary hue palettes are chosen by. The first
// call does the detection; later calls reuse it.
func (d *BackgroundDetector) Hue() Hue {
	if !d.resolved {
		d.dark, d.color = d.detect()
		d.resolved = true
	}
	if d.dark {
		return HueDark
	}
	return HueLight
}

// GetDetectedColor returns the background color a probe reported, if any.
func (d *BackgroundDetector) GetDetectedColor() string {
	return d.color
}

func (d *BackgroundDetector) detect() (bool, string) {
	switch d.mode {
	case ThemeModeDark:
		return true, ""
	case ThemeModeLight:
		return false, ""
	}
	for _, p := range d.probes {
		if dark, color, ok := p(); ok {
			return dark, color
		}
	}
	return true, ""
}

// probeColorFGBG reads "fg;bg" ANSI indexes set by rxvt-style terminals.
// Indexes below 8 are the dark half of the 16-color table.
func probeColorFGBG() (bool, string, bool) {
	v := os.Getenv("COLORFGBG")
	i := strings.LastIndexByte(v, ';')
	if i < 0 {
		return false, "", false
	}
	bg, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return false, "", false
	}
	return bg < 8 || bg == 16, "", true
}

// probeTerminal queries the terminal with OSC 11. tmux does not answer, so
// this only helps outside it.
func probeTerminal() (bool, string, bool) {
	out := termenv.NewOutput(os.Stdout)
	bg := out.BackgroundColor()
	if bg == nil {
		return false, "", false
	}
	if _, ok := bg.(termenv.NoColor); ok {
		return false, "", false
	}
	return out.HasDarkBackground(), termenv.ConvertToRGB(bg).Hex(), true
}

func probeITerm() (bool, string, bool) {
	profile := strings.ToLower(os.Getenv("ITERM_PROFILE"))
	switch {
	case strings.Contains(profile, "light"):
		return false, "", true
	case strings.Contains(profile, "dark"):
		return true, "", true
	}
	return false, "", false
}

// probeGhostty reads the background key of the Ghostty config, which works
// inside tmux where OSC queries do not.
func probeGhostty() (bool, string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return false, "", false
	}
	f, err := os.Open(filepath.Join(home, ".config", "ghostty", "config"))
	if err != nil {
		return false, "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || strings.TrimSpace(key) != "background" {
			continue
		}
		value, _, _ = strings.Cut(strings.TrimSpace(value), " ")
		c, err := ParseHex(value)
		if err != nil {
			return false, "", false
		}
		return !c.IsLight(), c.Hex(), true
	}
	return false, "", false
}

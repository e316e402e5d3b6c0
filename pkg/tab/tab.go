// Package tab renders a single workspace label into a styled, width-measured
// fragment of the tab line.
package tab

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/b/tabline/pkg/colors"
	"github.com/b/tabline/pkg/host"
)

// ArrowSeparator is the powerline glyph drawn on both sides of a tab when the
// surface has arrow fonts.
const ArrowSeparator = ""

// Ellipsis marks truncated labels.
const Ellipsis = "…"

// LinePart is one styled unit of the tab line.
type LinePart struct {
	Part     string // styled text
	Len      int    // display columns, not bytes
	TabIndex int    // 1-based workspace position a click here targets; 0 for decoration

	src *source
}

type source struct {
	label string
	opts  Options
}

// Fit returns the part unchanged when it is at most width columns wide.
// Workspace fragments are otherwise re-rendered with their label cut short
// by an ellipsis; decoration that does not fit becomes empty.
func (lp LinePart) Fit(width int) LinePart {
	if lp.Len <= width {
		return lp
	}
	if lp.src == nil || width <= 0 {
		return LinePart{TabIndex: lp.TabIndex}
	}
	o := lp.src.opts
	sep := Separator(o.Capabilities)
	room := width - 2 - 2*Width(sep)
	if room >= 1 {
		return render(Truncate(lp.src.label, room, Ellipsis), o, true)
	}
	return render(Truncate(lp.src.label, width, Ellipsis), o, false)
}

// Alert is the blink state of a workspace with a finished background task.
type Alert struct {
	Present bool
	Success bool
	Phase   bool // flips every tick
}

// Options describe one workspace fragment.
type Options struct {
	Position     int // 0-based
	Active       bool
	Fullscreen   bool
	Sync         bool
	Striped      bool // every other inactive tab, used without arrow fonts
	Alert        Alert
	Palette      colors.Palette
	Capabilities host.Capabilities
}

// Separator returns the glyph drawn around tabs for the given capabilities.
func Separator(caps host.Capabilities) string {
	if caps.ArrowFonts {
		return ArrowSeparator
	}
	return ""
}

// Style renders label, which already starts with the workspace's 1-based
// position number, as a tab fragment.
func Style(label string, o Options) LinePart {
	switch {
	case o.Fullscreen:
		label += " (FULLSCREEN)"
	case o.Sync:
		label += " (SYNC)"
	}
	return render(label, o, true)
}

func render(label string, o Options, decorate bool) LinePart {
	text := label
	sep := ""
	if decorate {
		text = " " + label + " "
		sep = Separator(o.Capabilities)
	}
	lp := LinePart{
		Len:      Width(text) + 2*Width(sep),
		TabIndex: o.Position + 1,
		src:      &source{label: label, opts: o},
	}

	r := RendererFor(o.Capabilities)
	if !o.Capabilities.Color {
		body := r.NewStyle()
		switch {
		case o.Active:
			body = body.Reverse(true).Bold(true)
		case o.Alert.Present && o.Alert.Phase:
			body = body.Underline(true)
		}
		lp.Part = sep + body.Render(text) + sep
		return lp
	}

	p := o.Palette
	bg, fg := tabColors(o)
	line := p.LineBackground()
	left := r.NewStyle().
		Foreground(lipgloss.Color(line.Lipgloss())).
		Background(lipgloss.Color(bg.Lipgloss()))
	body := left.
		Foreground(lipgloss.Color(fg.Lipgloss())).
		Bold(true)
	right := r.NewStyle().
		Foreground(lipgloss.Color(bg.Lipgloss())).
		Background(lipgloss.Color(line.Lipgloss()))

	if sep == "" {
		lp.Part = body.Render(text)
		return lp
	}
	lp.Part = left.Render(sep) + body.Render(text) + right.Render(sep)
	return lp
}

// tabColors picks background and foreground. Active wins over any alert.
func tabColors(o Options) (bg, fg colors.PaletteColor) {
	p := o.Palette
	inactive := p.Fg
	if o.Striped && !o.Capabilities.ArrowFonts {
		inactive = p.Alternate()
	}

	switch {
	case o.Active:
		return p.Green, p.Text()
	case o.Alert.Present:
		accent := p.Red
		if o.Alert.Success {
			accent = p.Cyan
		}
		if o.Alert.Phase {
			return accent, colors.Legible(p.Text(), accent)
		}
		return inactive, colors.Legible(accent, inactive)
	default:
		return inactive, p.Text()
	}
}

var (
	colorRenderer = newRenderer(termenv.TrueColor)
	monoRenderer  = newRenderer(termenv.ANSI)
)

func newRenderer(profile termenv.Profile) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(true)
	return r
}

// RendererFor returns a renderer with a fixed color profile, so output never
// depends on what the process's stdout happens to be attached to.
func RendererFor(caps host.Capabilities) *lipgloss.Renderer {
	if caps.Color {
		return colorRenderer
	}
	return monoRenderer
}

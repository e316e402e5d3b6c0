// Package line arranges tab fragments into a single row that never exceeds
// the available columns and answers which workspace sits under a column.
package line

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/b/tabline/pkg/colors"
	"github.com/b/tabline/pkg/host"
	"github.com/b/tabline/pkg/tab"
)

// OverflowStyle selects how hidden tabs are announced.
type OverflowStyle string

const (
	OverflowCount OverflowStyle = "count" // " ← +3 " / " +3 → "
	OverflowArrow OverflowStyle = "arrow" // " ← " / " → "
)

// Params is everything Compose needs for one row.
type Params struct {
	Tabs            []tab.LinePart
	Active          int // index into Tabs of the active workspace
	Cols            int
	Palette         colors.Palette
	Capabilities    host.Capabilities
	SessionName     string
	HideSessionName bool
	Mode            host.InputMode
	SwapLayoutName  string
	SwapLayoutDirty bool
	Overflow        OverflowStyle
}

// Line is the composed row, in display order.
type Line struct {
	Parts []tab.LinePart
}

// String concatenates the styled parts.
func (l Line) String() string {
	var b strings.Builder
	for _, p := range l.Parts {
		b.WriteString(p.Part)
	}
	return b.String()
}

// Width is the total display width.
func (l Line) Width() int {
	return titleLen(l.Parts)
}

// TabAt returns the 1-based workspace position whose fragment covers col, or
// 0 when col is on decoration or past the end of the line.
func (l Line) TabAt(col int) int {
	if col < 0 {
		return 0
	}
	start := 0
	for _, p := range l.Parts {
		if col < start+p.Len {
			return p.TabIndex
		}
		start += p.Len
	}
	return 0
}

// TabToFocus returns the workspace to switch to for a click at col, or false
// when the click hit decoration or the already active workspace.
func TabToFocus(l Line, active, col int) (int, bool) {
	pos := l.TabAt(col)
	if pos == 0 || pos == active {
		return 0, false
	}
	return pos, true
}

func titleLen(parts []tab.LinePart) int {
	n := 0
	for _, p := range parts {
		n += p.Len
	}
	return n
}

// Compose lays out the prefix and as many tabs around the active one as fit
// in p.Cols.
//
// Tabs are added one at a time to whichever side of the active tab has taken
// fewer columns so far, so the active tab stays roughly centred. When both
// sides have taken the same width the left neighbour goes first.
func Compose(p Params) Line {
	parts := prefix(p)
	if len(p.Tabs) == 0 {
		return Line{Parts: parts}
	}
	active := p.Active
	if active < 0 || active >= len(p.Tabs) {
		active = len(p.Tabs) - 1
	}

	budget := p.Cols - titleLen(parts)
	if budget < 0 {
		budget = 0
	}

	before := append([]tab.LinePart(nil), p.Tabs[:active]...)
	after := append([]tab.LinePart(nil), p.Tabs[active+1:]...)
	current := p.Tabs[active]
	if current.Len > budget {
		current = current.Fit(budget)
		if current.Len == 0 {
			return Line{Parts: parts}
		}
	}

	middle := populate(before, after, current, budget, p)
	return Line{Parts: append(parts, middle...)}
}

func populate(before, after []tab.LinePart, current tab.LinePart, cols int, p Params) []tab.LinePart {
	render := []tab.LinePart{current}
	middle := current.Len
	totalLeft, totalRight := 0, 0

	for {
		leftCount, rightCount := len(before), len(after)
		collapsedLeft := moreMessage(leftCount, true, p)
		collapsedRight := moreMessage(rightCount, false, p)

		total := collapsedLeft.Len + middle + collapsedRight.Len
		if total > cols {
			// even the indicators do not fit next to what is already shown
			break
		}

		left, right := -1, -1
		if leftCount > 0 {
			left = before[leftCount-1].Len + total
			if leftCount == 1 {
				left -= collapsedLeft.Len
			}
		}
		if rightCount > 0 {
			right = after[0].Len + total
			if rightCount == 1 {
				right -= collapsedRight.Len
			}
		}
		leftFits := left >= 0 && left <= cols
		rightFits := right >= 0 && right <= cols

		switch {
		case leftFits && (totalLeft <= totalRight || !rightFits):
			t := before[leftCount-1]
			before = before[:leftCount-1]
			middle += t.Len
			totalLeft += t.Len
			render = append([]tab.LinePart{t}, render...)
		case rightFits:
			t := after[0]
			after = after[1:]
			middle += t.Len
			totalRight += t.Len
			render = append(render, t)
		default:
			if collapsedLeft.Len > 0 {
				render = append([]tab.LinePart{collapsedLeft}, render...)
			}
			if collapsedRight.Len > 0 {
				render = append(render, collapsedRight)
			}
			return render
		}
	}
	return render
}

// moreMessage builds the overflow indicator for count hidden tabs on one side.
func moreMessage(count int, left bool, p Params) tab.LinePart {
	if count == 0 {
		return tab.LinePart{}
	}
	n := "many"
	if count < 10000 {
		n = fmt.Sprintf("%d", count)
	}
	var text string
	switch {
	case p.Overflow == OverflowArrow && left:
		text = " ← "
	case p.Overflow == OverflowArrow:
		text = " → "
	case left:
		text = " ← +" + n + " "
	default:
		text = " +" + n + " → "
	}

	sep := tab.Separator(p.Capabilities)
	r := tab.RendererFor(p.Capabilities)
	part := tab.LinePart{Len: tab.Width(text) + 2*tab.Width(sep)}
	if !p.Capabilities.Color {
		part.Part = sep + r.NewStyle().Bold(true).Render(text) + sep
		return part
	}

	pal := p.Palette
	fg := lipgloss.Color(pal.Contrast().Lipgloss())
	bg := lipgloss.Color(pal.Orange.Lipgloss())
	line := lipgloss.Color(pal.LineBackground().Lipgloss())
	body := r.NewStyle().Foreground(fg).Background(bg).Bold(true)
	if sep == "" {
		part.Part = body.Render(text)
		return part
	}
	leftSep := r.NewStyle().Foreground(line).Background(bg).Render(sep)
	rightSep := r.NewStyle().Foreground(bg).Background(line).Render(sep)
	part.Part = leftSep + body.Render(text) + rightSep
	return part
}

// prefix returns the session name, input mode and dirty-layout parts that
// fit in p.Cols, in that order.
func prefix(p Params) []tab.LinePart {
	var texts []string
	if !p.HideSessionName && p.SessionName != "" {
		texts = append(texts, " "+p.SessionName+" ")
	}
	texts = append(texts, " "+p.Mode.String()+" ")
	if p.SwapLayoutDirty {
		name := strings.ToUpper(p.SwapLayoutName)
		if name == "" {
			name = "UNNAMED"
		}
		texts = append(texts, " "+name+"* ")
	}

	r := tab.RendererFor(p.Capabilities)
	style := r.NewStyle().Bold(true)
	if p.Capabilities.Color {
		style = style.
			Foreground(lipgloss.Color(p.Palette.Contrast().Lipgloss())).
			Background(lipgloss.Color(p.Palette.LineBackground().Lipgloss()))
	}

	var parts []tab.LinePart
	used := 0
	for i, text := range texts {
		w := tab.Width(text)
		if used+w > p.Cols {
			continue
		}
		s := style
		if i == len(texts)-1 && p.SwapLayoutDirty && p.Capabilities.Color {
			s = s.Foreground(lipgloss.Color(p.Palette.Yellow.Lipgloss()))
		}
		parts = append(parts, tab.LinePart{Part: s.Render(text), Len: w})
		used += w
	}
	return parts
}

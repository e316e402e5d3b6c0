package tab

import "github.com/mattn/go-runewidth"

// cond measures display columns with East Asian ambiguous characters (the
// powerline arrow, "…", "←") counted as one column, independent of locale.
var cond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// Width returns the number of display columns s occupies. s must not contain
// escape sequences.
func Width(s string) int {
	return cond.StringWidth(s)
}

// Truncate shortens s to at most w columns, ending it with tail when cut.
func Truncate(s string, w int, tail string) string {
	if w <= 0 {
		return ""
	}
	return cond.Truncate(s, w, tail)
}

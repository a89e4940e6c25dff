package ui

import (
	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of a string in screen columns.
// Wide characters count two, combining marks zero.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateToWidth cuts s to at most maxWidth columns, ending in an ellipsis
// when something was cut. Wide characters are never split.
func TruncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

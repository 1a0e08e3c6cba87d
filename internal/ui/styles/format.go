package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates a string to fit within maxWidth, adding ellipsis if needed.
// ANSI sequences in s are kept intact.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return ansi.Truncate(s, maxWidth, "")
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// TruncateLeft drops characters from the start of s so it fits maxWidth,
// marking the cut with an ellipsis. Used for paths, whose end matters most.
func TruncateLeft(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	width := ansi.StringWidth(s)
	if width <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return ansi.TruncateLeft(s, width-maxWidth, "")
	}
	return ansi.TruncateLeft(s, width-maxWidth+3, "...")
}

// PadRight pads s with spaces to width.
func PadRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Package views renders the content area of each mode.
// Image pixels are not drawn; every view shows information about the files.
package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// window returns the first visible row so that selected stays centered in
// height rows out of total.
func window(selected, total, height int) int {
	if height <= 0 || total <= height {
		return 0
	}
	start := selected - height/2
	return max(0, min(start, total-height))
}

// fit clips lines to width and height, padding to height.
func fit(lines []string, width, height int) string {
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if width > 0 {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}
	for height > 0 && len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// center places s in the middle of a width x height box.
func center(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}

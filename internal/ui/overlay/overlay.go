// Package overlay draws panels such as the manipulate panel and the
// completion list on top of the current view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	Center Position = iota
	BottomLeft
	BottomRight
)

// Config controls overlay rendering behavior.
type Config struct {
	Width    int // viewport width
	Height   int // viewport height
	Position Position
	PadX     int // distance from the side edge, ignored for Center
	PadY     int // distance from the bottom edge, ignored for Center
}

// Place renders fg on top of bg, keeping the ANSI styling of both.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x, y := origin(cfg, lipgloss.Width(fg), len(fgLines))
	for i, fgLine := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], fgLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of line starting at column x with insert.
func splice(line, insert string, x int) string {
	left := ansi.Truncate(line, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(insert)
	var right string
	if end < ansi.StringWidth(line) {
		right = ansi.TruncateLeft(line, end, "")
	}
	return left + insert + right
}

func origin(cfg Config, w, h int) (x, y int) {
	switch cfg.Position {
	case BottomLeft:
		x, y = cfg.PadX, cfg.Height-h-cfg.PadY
	case BottomRight:
		x, y = cfg.Width-w-cfg.PadX, cfg.Height-h-cfg.PadY
	default:
		x, y = (cfg.Width-w)/2, (cfg.Height-h)/2
	}
	return max(0, x), max(0, y)
}

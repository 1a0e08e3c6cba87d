package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zjrosen/vimg/internal/files"
	"github.com/zjrosen/vimg/internal/thumbnail"
	"github.com/zjrosen/vimg/internal/ui/styles"
)

// CellWidth is the number of columns one thumbnail cell takes at size.
func CellWidth(size int) int {
	return max(size/8, 8) + 2
}

// Columns returns how many cells of size fit in width.
func Columns(size, width int) int {
	return max(width/CellWidth(size), 1)
}

// Thumbnails renders the grid as rows of cells holding the name and the
// generation state of each thumbnail.
func Thumbnails(g *thumbnail.Grid, marks *files.Marks, width, height int) string {
	if g.Len() == 0 {
		return fit([]string{styles.MutedStyle.Render("No images")}, width, height)
	}

	cell := CellWidth(g.Size())
	columns := g.Columns()
	rows := (g.Len() + columns - 1) / columns
	// two lines per row: name and state
	visible := rows
	if height > 0 {
		visible = max(height/2, 1)
	}
	start := window(g.Index()/columns, rows, visible)

	paths := g.Paths()
	var lines []string
	for row := start; row < rows && row < start+visible; row++ {
		var names, states []string
		for col := 0; col < columns; col++ {
			i := row*columns + col
			if i >= len(paths) {
				break
			}
			name := filepath.Base(paths[i])
			if marks != nil && marks.IsMarked(paths[i]) {
				name = "*" + name
			}
			name = styles.PadRight(styles.TruncateString(name, cell-2), cell-1)
			state := styles.PadRight(cellState(g, i), cell-1)
			if i == g.Index() {
				name = styles.SelectedStyle.Render(name)
				state = styles.SelectedStyle.Render(state)
			} else {
				state = styles.MutedStyle.Render(state)
			}
			names = append(names, name)
			states = append(states, state)
		}
		lines = append(lines, strings.Join(names, " "), strings.Join(states, " "))
	}
	return fit(lines, width, height)
}

func cellState(g *thumbnail.Grid, i int) string {
	if g.Failed(i) {
		return "failed"
	}
	img, ok := g.Image(i)
	if !ok {
		return "…"
	}
	b := img.Bounds()
	return fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}

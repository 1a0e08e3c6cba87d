package thumbnail

import (
	"fmt"
	"image"
	"path/filepath"
	"slices"
	"strconv"
)

// Display sizes the grid can zoom through.
var Sizes = []int{64, 128, 256, 512}

// Grid is the thumbnail mode model: the paths shown, their thumbnails and the
// selected cell.
type Grid struct {
	paths    []string
	images   map[int]image.Image
	failed   map[int]bool
	selected int
	columns  int
	size     int
	onSelect []func(index int)
}

// NewGrid creates an empty grid showing thumbnails of the given display size.
func NewGrid(size int) *Grid {
	if !slices.Contains(Sizes, size) {
		size = NormalSize
	}
	return &Grid{columns: 1, size: size, images: map[int]image.Image{}, failed: map[int]bool{}}
}

// OnSelect registers a hook run when the selection moves.
func (g *Grid) OnSelect(fn func(index int)) { g.onSelect = append(g.onSelect, fn) }

// Load replaces the grid content and selects index.
func (g *Grid) Load(paths []string, index int) {
	g.paths = slices.Clone(paths)
	clear(g.images)
	clear(g.failed)
	g.selected = 0
	g.Select(index)
}

// Paths returns the shown paths.
func (g *Grid) Paths() []string { return g.paths }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.paths) }

// Set stores the outcome of a thumbnail task.
func (g *Grid) Set(c Created) {
	if c.Index < 0 || c.Index >= len(g.paths) || g.paths[c.Index] != c.Path {
		return
	}
	if c.Err != nil {
		g.failed[c.Index] = true
		return
	}
	g.images[c.Index] = c.Image
}

// Image returns the thumbnail of cell i if it was created.
func (g *Grid) Image(i int) (image.Image, bool) {
	img, ok := g.images[i]
	return img, ok
}

// Failed reports whether creating the thumbnail of cell i failed.
func (g *Grid) Failed(i int) bool { return g.failed[i] }

// Created returns how many thumbnails are available.
func (g *Grid) Created() int { return len(g.images) }

// Index returns the selected cell.
func (g *Grid) Index() int { return g.selected }

// Selected returns the selected path, empty when the grid is empty.
func (g *Grid) Selected() string {
	if len(g.paths) == 0 {
		return ""
	}
	return g.paths[g.selected]
}

// Select moves the selection to index, clamped to the grid.
func (g *Grid) Select(index int) {
	if len(g.paths) == 0 {
		return
	}
	index = max(0, min(len(g.paths)-1, index))
	if index == g.selected {
		return
	}
	g.selected = index
	for _, fn := range g.onSelect {
		fn(index)
	}
}

// SetColumns sets how many cells fit in a row.
func (g *Grid) SetColumns(n int) { g.columns = max(1, n) }

// Columns returns the number of cells per row.
func (g *Grid) Columns() int { return g.columns }

// Move moves the selection in direction by count cells or rows.
func (g *Grid) Move(direction string, count int) error {
	step := 0
	switch direction {
	case "left":
		step = -1
	case "right":
		step = 1
	case "up":
		step = -g.columns
	case "down":
		step = g.columns
	default:
		return fmt.Errorf("invalid direction %q, expected left, right, up or down", direction)
	}
	target := g.selected + step*count
	if direction == "up" || direction == "down" {
		// Rows that do not exist leave the selection in place.
		if target < 0 || target >= len(g.paths) {
			return nil
		}
	}
	g.Select(target)
	return nil
}

// Size returns the display size.
func (g *Grid) Size() int { return g.size }

// Zoom steps the display size in or out, staying within Sizes.
func (g *Grid) Zoom(in bool, count int) {
	i := slices.Index(Sizes, g.size)
	if in {
		i = min(len(Sizes)-1, i+count)
	} else {
		i = max(0, i-count)
	}
	g.size = Sizes[i]
}

// Name returns the base name of the selected path.
func (g *Grid) Name() string {
	if s := g.Selected(); s != "" {
		return filepath.Base(s)
	}
	return ""
}

// IndexString returns the 1-based selected index zero padded to the total width.
func (g *Grid) IndexString() string {
	if len(g.paths) == 0 {
		return ""
	}
	return fmt.Sprintf("%0*d", len(strconv.Itoa(len(g.paths))), g.selected+1)
}

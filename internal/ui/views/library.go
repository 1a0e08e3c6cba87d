package views

import (
	"path/filepath"

	"github.com/zjrosen/vimg/internal/files"
	"github.com/zjrosen/vimg/internal/ui/styles"
)

// Library renders the directory listing with the selection kept in view.
func Library(lib *files.Library, marks *files.Marks, width, height int) string {
	entries := lib.Entries()
	if len(entries) == 0 {
		return fit([]string{styles.MutedStyle.Render("Directory is empty")}, width, height)
	}

	start := window(lib.Index(), len(entries), height)
	lines := make([]string, 0, min(len(entries), max(height, 1)))
	for i := start; i < len(entries) && (height <= 0 || i < start+height); i++ {
		name := filepath.Base(entries[i])
		prefix := "  "
		switch {
		case lib.IsDir(i):
			name += "/"
		case marks != nil && marks.IsMarked(entries[i]):
			prefix = "* "
		}

		line := prefix + name
		switch {
		case i == lib.Index():
			line = styles.SelectedStyle.Render(styles.PadRight(line, width))
		case lib.IsDir(i):
			line = styles.DirectoryStyle.Render(line)
		case prefix == "* ":
			line = styles.MarkedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return fit(lines, width, height)
}

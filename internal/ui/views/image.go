package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zjrosen/vimg/internal/ui/styles"
)

// ImageInfo describes the image shown in image mode.
type ImageInfo struct {
	Path   string
	Index  string // "3/12"
	Size   string // human readable file size
	Width  int
	Height int
	Marked bool
	Edited bool // an accepted manipulation is pending a write
	Err    error
}

// Image renders info centered in a width x height area.
func Image(info ImageInfo, width, height int) string {
	if info.Path == "" {
		return center(styles.MutedStyle.Render("No image"), width, height)
	}

	name := filepath.Base(info.Path)
	if info.Marked {
		name = styles.MarkedStyle.Render("* " + name)
	}
	lines := []string{name, styles.MutedStyle.Render(filepath.Dir(info.Path))}

	var details []string
	if info.Index != "" {
		details = append(details, info.Index)
	}
	if info.Width > 0 && info.Height > 0 {
		details = append(details, fmt.Sprintf("%dx%d", info.Width, info.Height))
	}
	if info.Size != "" {
		details = append(details, info.Size)
	}
	if info.Edited {
		details = append(details, "modified")
	}
	if len(details) > 0 {
		lines = append(lines, strings.Join(details, "  "))
	}
	if info.Err != nil {
		lines = append(lines, styles.StatusErrorStyle.Render(info.Err.Error()))
	}
	return center(strings.Join(lines, "\n"), width, height)
}

package views

import (
	"fmt"
	"strings"

	"github.com/zjrosen/vimg/internal/manipulate"
	"github.com/zjrosen/vimg/internal/ui/overlay"
	"github.com/zjrosen/vimg/internal/ui/styles"
)

// ManipulatePanel renders the manipulation values with the focused one
// highlighted.
func ManipulatePanel(values manipulate.Values, current string, processing bool) string {
	row := func(name string, value int) string {
		label := fmt.Sprintf("%-10s", name)
		if name == current {
			label = styles.PanelFocusedLabelStyle.Render(label)
		}
		return fmt.Sprintf("%s %4d", label, value)
	}
	lines := []string{
		row(manipulate.Brightness, values.Brightness),
		row(manipulate.Contrast, values.Contrast),
	}
	if processing {
		lines = append(lines, styles.MutedStyle.Render("processing..."))
	}
	return styles.PanelStyle.Render(strings.Join(lines, "\n"))
}

// OverlayPanel places panel in the bottom right corner of bg.
func OverlayPanel(panel, bg string, width, height int) string {
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.BottomRight,
		PadX:     1,
	}, panel, bg)
}

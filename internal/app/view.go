package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/ui/views"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	height := m.height
	bar := m.statusbar.View()
	if bar != "" {
		height--
	}
	var line string
	if m.surfaces[mode.Command].Visible() {
		line = m.commandline.View()
		height -= lipgloss.Height(line)
	}
	height = max(height, 0)

	content := m.content(height)
	if m.surfaces[mode.Manipulate].Visible() {
		panel := views.ManipulatePanel(m.manipulator.Values(), m.manipulator.Current(), m.manipulator.Processing())
		content = views.OverlayPanel(panel, content, m.width, height)
	}

	parts := []string{content}
	if bar != "" {
		parts = append(parts, bar)
	}
	if line != "" {
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) content(height int) string {
	switch {
	case m.surfaces[mode.Library].Visible():
		return views.Library(m.library, m.marks, m.width, height)
	case m.surfaces[mode.Thumbnail].Visible():
		return views.Thumbnails(m.grid, m.marks, m.width, height)
	}
	return views.Image(m.imageInfo(), m.width, height)
}

func (m *Model) imageInfo() views.ImageInfo {
	path := m.list.Current()
	info := views.ImageInfo{
		Path:   path,
		Index:  m.list.IndexString(),
		Marked: path != "" && m.marks.IsMarked(path),
		Edited: path != "" && path == m.editedPath && m.manipulator.Accepted() != nil,
	}
	if m.current.path == path {
		info.Size = m.current.size
		info.Width, info.Height = m.current.width, m.current.height
		info.Err = m.current.err
	}
	return info
}

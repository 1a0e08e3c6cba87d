package statusbar

import (
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimg/internal/config"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/status"
)

type fixedMode struct{ m mode.Mode }

func (f *fixedMode) Current() (mode.Mode, error) { return f.m, nil }

func newBar(t *testing.T) (*Model, *fixedMode) {
	t.Helper()
	reg := status.NewRegistry()
	reg.MustRegister("{name}", func() string { return "cat.png" })
	reg.MustRegister("{mode}", func() string { return "IMAGE" })

	modes := &fixedMode{m: mode.Image}
	cfg := config.StatusBarConfig{
		Show:           true,
		MessageTimeout: time.Second,
		Left:           map[string]string{"default": "left", "image": "{name}"},
		Center:         map[string]string{"default": "center"},
		Right:          map[string]string{"default": "{mode}"},
	}
	return New(cfg, reg, modes), modes
}

func TestRefresh_UsesModeTextWithDefaultFallback(t *testing.T) {
	bar, modes := newBar(t)

	bar.Refresh()
	left, center, right := bar.Texts()
	require.Equal(t, "cat.png", left)
	require.Equal(t, "center", center)
	require.Equal(t, "IMAGE", right)

	modes.m = mode.Library
	bar.Refresh()
	left, _, _ = bar.Texts()
	require.Equal(t, "left", left)
}

func TestShow_IgnoresDebug(t *testing.T) {
	bar, _ := newBar(t)
	require.Nil(t, bar.Show(log.Entry{Level: log.LevelDebug, Message: "noise"}))
	require.Empty(t, bar.Message())
}

func TestShow_ClearRemovesMessage(t *testing.T) {
	bar, _ := newBar(t)
	require.NotNil(t, bar.Show(log.Entry{Level: log.LevelWarn, Message: "No images loaded"}))
	require.Equal(t, "No images loaded", bar.Message())

	bar.Clear()
	require.Empty(t, bar.Message())
}

func TestShow_KeepsMoreSevereMessage(t *testing.T) {
	bar, _ := newBar(t)
	bar.Show(log.Entry{Level: log.LevelError, Message: "broken"})
	require.Nil(t, bar.Show(log.Entry{Level: log.LevelInfo, Message: "wrote file"}))
	require.Equal(t, "broken", bar.Message())

	bar.Show(log.Entry{Level: log.LevelError, Message: "broken again"})
	require.Equal(t, "broken again", bar.Message())
}

func TestUpdate_DismissesOnlyCurrentMessage(t *testing.T) {
	bar, _ := newBar(t)
	bar.Show(log.Entry{Level: log.LevelInfo, Message: "first"})
	bar.Show(log.Entry{Level: log.LevelInfo, Message: "second"})

	bar.Update(DismissMsg{Seq: 1})
	require.Equal(t, "second", bar.Message())

	bar.Update(DismissMsg{Seq: 2})
	require.Empty(t, bar.Message())
}

func TestView_FillsWidth(t *testing.T) {
	bar, _ := newBar(t)
	bar.Refresh()
	bar.SetSize(40)

	view := ansi.Strip(bar.View())
	require.Equal(t, 40, ansi.StringWidth(view))
	require.Contains(t, view, "cat.png")
	require.Contains(t, view, "IMAGE")

	bar.Show(log.Entry{Level: log.LevelError, Message: "Unknown command for image mode: foo"})
	view = ansi.Strip(bar.View())
	require.Contains(t, view, "Unknown command")
	require.NotContains(t, view, "cat.png")
}

func TestView_Hidden(t *testing.T) {
	bar, _ := newBar(t)
	bar.cfg.Show = false
	bar.SetSize(40)
	require.Empty(t, bar.View())
	require.False(t, bar.Visible())
}

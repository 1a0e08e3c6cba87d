// Package statusbar renders the status line at the bottom of the screen.
//
// The left, center and right texts are configured per mode and evaluated
// through the status module registry on every update signal. Log messages
// temporarily replace the left text until the status is cleared or the
// message times out.
package statusbar

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/vimg/internal/config"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/status"
	"github.com/zjrosen/vimg/internal/ui/styles"
)

// ModeSource reports the active mode.
type ModeSource interface {
	Current() (mode.Mode, error)
}

// DismissMsg removes the message with the same sequence number.
type DismissMsg struct {
	Seq int
}

// ScheduleDismiss returns a command that dismisses message seq after d.
func ScheduleDismiss(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return DismissMsg{Seq: seq}
	})
}

// Model holds the status bar state.
type Model struct {
	cfg    config.StatusBarConfig
	status *status.Registry
	modes  ModeSource
	width  int

	left, center, right string

	message string
	level   log.Level
	seq     int
}

// New creates a status bar evaluating cfg's texts through reg.
func New(cfg config.StatusBarConfig, reg *status.Registry, modes ModeSource) *Model {
	return &Model{cfg: cfg, status: reg, modes: modes}
}

// SetSize updates the available width.
func (m *Model) SetSize(width int) { m.width = width }

// Visible reports whether the bar is configured to show.
func (m *Model) Visible() bool { return m.cfg.Show }

// Refresh re-evaluates the texts of the active mode.
func (m *Model) Refresh() {
	current, err := m.modes.Current()
	if err != nil {
		current = mode.Global
	}
	m.left = m.status.Evaluate(config.StatusText(m.cfg.Left, current))
	m.center = m.status.Evaluate(config.StatusText(m.cfg.Center, current))
	m.right = m.status.Evaluate(config.StatusText(m.cfg.Right, current))
}

// Texts returns the last evaluated left, center and right texts.
func (m *Model) Texts() (left, center, right string) {
	return m.left, m.center, m.right
}

// Message returns the message currently shown instead of the left text.
func (m *Model) Message() string { return m.message }

// Show displays a log entry. Debug entries are ignored. The returned command
// dismisses the message after the configured timeout.
func (m *Model) Show(entry log.Entry) tea.Cmd {
	if entry.Level < log.LevelInfo {
		return nil
	}
	// A warning must not hide a more severe message that is still showing.
	if m.message != "" && entry.Level < m.level {
		return nil
	}
	m.seq++
	m.message = entry.Message
	m.level = entry.Level
	if m.cfg.MessageTimeout <= 0 {
		return nil
	}
	return ScheduleDismiss(m.cfg.MessageTimeout, m.seq)
}

// Clear removes the message.
func (m *Model) Clear() {
	m.message = ""
	m.level = log.LevelDebug
}

// Update handles DismissMsg.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(DismissMsg); ok && msg.Seq == m.seq {
		m.Clear()
	}
	return nil
}

// View renders the bar to the current width.
func (m *Model) View() string {
	if !m.cfg.Show || m.width <= 0 {
		return ""
	}

	left := m.left
	leftStyle := styles.StatusBarStyle
	if m.message != "" {
		left = m.message
		switch {
		case m.level >= log.LevelError:
			leftStyle = styles.StatusErrorStyle
		case m.level == log.LevelWarn:
			leftStyle = styles.StatusWarningStyle
		default:
			leftStyle = styles.StatusInfoStyle
		}
	}

	right := ansi.Truncate(m.right, m.width/3, "…")
	center := ansi.Truncate(m.center, m.width/3, "…")
	left = ansi.Truncate(left, max(m.width-ansi.StringWidth(right)-ansi.StringWidth(center)-2, 0), "…")

	gap := max(m.width-ansi.StringWidth(left)-ansi.StringWidth(center)-ansi.StringWidth(right)-2, 0)
	before := gap / 2
	return leftStyle.Render(" "+left) +
		styles.StatusBarStyle.Render(strings.Repeat(" ", before)+center+strings.Repeat(" ", gap-before)+right+" ")
}

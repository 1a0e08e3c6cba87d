// Package commandline provides the ":" command line widget.
package commandline

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/ui/styles"
)

// Prompt is shown in front of the typed text.
const Prompt = ":"

// NameSource lists extra completion candidates for a mode, e.g. aliases.
type NameSource func(m mode.Mode) []string

// Model is the command line.
type Model struct {
	input    textinput.Model
	commands *command.Registry
	extra    []NameSource
	width    int

	candidates []string
	selected   int
}

// New creates a command line completing command names from commands.
func New(commands *command.Registry, extra ...NameSource) *Model {
	ti := textinput.New()
	ti.Prompt = Prompt
	ti.PromptStyle = styles.CommandLineStyle
	ti.TextStyle = styles.CommandLineStyle
	return &Model{input: ti, commands: commands, extra: extra, selected: -1}
}

// Text returns the typed text without the prompt.
func (m *Model) Text() string { return m.input.Value() }

// SetText replaces the typed text and moves the cursor to its end.
func (m *Model) SetText(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}

// Focus starts receiving input.
func (m *Model) Focus() tea.Cmd { return m.input.Focus() }

// Blur stops receiving input.
func (m *Model) Blur() { m.input.Blur() }

// Focused reports whether the line receives input.
func (m *Model) Focused() bool { return m.input.Focused() }

// Reset empties the line and ends completion.
func (m *Model) Reset() {
	m.input.Reset()
	m.endCompletion()
}

// SetSize updates the available width.
func (m *Model) SetSize(width int) {
	m.width = width
	m.input.Width = max(width-ansi.StringWidth(Prompt)-1, 0)
}

// Update forwards msg to the text input. Any edit ends a completion cycle.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.KeyMsg); ok {
		m.endCompletion()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// Complete replaces the command name with the next candidate valid in m.
// reverse walks the candidates backwards. Nothing happens once arguments
// are being typed.
func (m *Model) Complete(md mode.Mode, reverse bool) {
	if m.candidates == nil {
		text := m.Text()
		if strings.Contains(text, " ") {
			return
		}
		m.candidates = m.complete(md, text)
		m.selected = -1
		if len(m.candidates) == 0 {
			m.candidates = nil
			return
		}
	}
	n := len(m.candidates)
	switch {
	case m.selected < 0 && reverse:
		m.selected = n - 1
	case reverse:
		m.selected = (m.selected - 1 + n) % n
	default:
		m.selected = (m.selected + 1) % n
	}
	m.SetText(m.candidates[m.selected])
}

func (m *Model) complete(md mode.Mode, prefix string) []string {
	names := m.commands.Names(md)
	for _, source := range m.extra {
		names = append(names, source(md)...)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// Completions returns the candidates of the running cycle and the selected index.
func (m *Model) Completions() ([]string, int) {
	return m.candidates, m.selected
}

func (m *Model) endCompletion() {
	m.candidates = nil
	m.selected = -1
}

// View renders the completion row, when completing, above the line.
func (m *Model) View() string {
	line := m.input.View()
	if len(m.candidates) == 0 {
		return line
	}
	parts := make([]string, len(m.candidates))
	for i, c := range m.candidates {
		if i == m.selected {
			parts[i] = styles.CompletionSelectedStyle.Render(c)
		} else {
			parts[i] = styles.CompletionStyle.Render(c)
		}
	}
	row := strings.Join(parts, "  ")
	if m.width > 0 {
		row = ansi.Truncate(row, m.width, "…")
	}
	return row + "\n" + line
}

package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	json   bool
}

// NewFormatter creates a new formatter writing tables, or JSON when asJSON is set.
func NewFormatter(writer io.Writer, asJSON bool) *Formatter {
	return &Formatter{
		writer: writer,
		json:   asJSON,
	}
}

// FormatCommands formats a list of commands
func (f *Formatter) FormatCommands(commands []CommandDTO) error {
	if f.json {
		return f.encode(commands)
	}
	rows := make([][]string, len(commands))
	for i, c := range commands {
		rows[i] = []string{c.Mode, c.Name, c.Description}
	}
	return f.table([]string{"MODE", "COMMAND", "DESCRIPTION"}, rows)
}

// FormatModules formats a list of status modules
func (f *Formatter) FormatModules(modules []ModuleDTO) error {
	if f.json {
		return f.encode(modules)
	}
	rows := make([][]string, len(modules))
	for i, m := range modules {
		rows[i] = []string{m.Token}
	}
	return f.table([]string{"MODULE"}, rows)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) table(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(f.writer, t.String())
	return err
}

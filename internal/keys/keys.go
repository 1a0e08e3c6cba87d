// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// CommandLineKeyMap defines the fixed keys of the command line. Everything
// else typed in command mode is looked up in the command mode Bindings first
// and then handed to the text input.
type CommandLineKeyMap struct {
	Submit   key.Binding
	Complete key.Binding
	Quit     key.Binding
}

// CommandLine holds the command line keys.
var CommandLine = CommandLineKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run command"),
	),
	Complete: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "complete"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// ShortHelp returns keybindings for the short help view.
func (k CommandLineKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Complete}
}

// FullHelp returns keybindings for the full help view.
func (k CommandLineKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Complete, k.Quit}}
}

package history

import (
	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
)

// Line is the command line text being edited.
type Line interface {
	Text() string
	SetText(text string)
}

// History combines the store with the cursor of the command line.
type History struct {
	store  *Store
	cursor Cursor
}

// New wraps store.
func New(store *Store) *History { return &History{store: store} }

// Store returns the underlying store.
func (h *History) Store() *Store { return h.store }

// Add records a submitted command line and ends any cycle.
func (h *History) Add(text string) {
	h.cursor.Reset()
	if err := h.store.Add(text); err != nil {
		log.ErrorErr(log.CatHistory, "Failed to store history", err)
	}
}

// Reset ends the cycle, for instance when the command line is left.
func (h *History) Reset() { h.cursor.Reset() }

// Cycle returns the entry after moving in dir from typed.
func (h *History) Cycle(dir Direction, typed string, match Match) (string, error) {
	entries, err := h.store.List()
	if err != nil {
		return typed, err
	}
	return h.cursor.Cycle(dir, typed, entries, match), nil
}

// Commands returns the command mode history commands editing line.
func (h *History) Commands(line Line) []command.Command {
	cycle := func(match Match) command.Handler {
		return func(call command.Call) error {
			if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
				return err
			}
			dir, ok := ParseDirection(call.Args[0])
			if !ok {
				return &command.ArgumentError{Command: call.Name, Msg: "direction must be next or prev"}
			}
			text, err := h.Cycle(dir, line.Text(), match)
			if err != nil {
				return command.Errorf("%v", err)
			}
			line.SetText(text)
			return nil
		}
	}
	return []command.Command{
		command.New("history", mode.Command, cycle(Prefix),
			command.NoStore(),
			command.Describe("Cycle through command history.\n\nusage: history next|prev")),
		command.New("history-substr-search", mode.Command, cycle(Substring),
			command.NoStore(),
			command.Describe("Cycle through command history with substring matching.\n\nusage: history-substr-search next|prev")),
	}
}

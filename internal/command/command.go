// Package command holds the registry of textual commands keyed by mode and name.
package command

import (
	"strconv"
	"strings"

	"github.com/zjrosen/vimg/internal/mode"
)

// Call carries one invocation of a command.
type Call struct {
	Mode  mode.Mode // mode the command runs in
	Name  string
	Count string // decimal repeat count, empty when none was given
	Args  []string
}

// ParseCount returns the count and whether one was given.
func (c Call) ParseCount() (int, bool) {
	if c.Count == "" {
		return 0, false
	}
	n, err := strconv.Atoi(c.Count)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CountOr returns the count, or def when none was given.
func (c Call) CountOr(def int) int {
	if n, ok := c.ParseCount(); ok {
		return n
	}
	return def
}

// Handler executes a command.
type Handler func(call Call) error

// Command is a registered command.
type Command struct {
	Name        string
	Mode        mode.Mode // as registered, may be mode.Global
	Description string
	Store       bool // whether running it becomes the repeat target
	Hide        bool // excluded from listings and completion
	Handler     Handler
}

// Option customises a Command built with New.
type Option func(*Command)

// NoStore keeps the command from becoming the repeat target.
func NoStore() Option {
	return func(c *Command) { c.Store = false }
}

// Hidden excludes the command from listings.
func Hidden() Option {
	return func(c *Command) { c.Hide = true }
}

// Describe sets the description to the first non-empty line of doc.
func Describe(doc string) Option {
	return func(c *Command) { c.Description = firstLine(doc) }
}

// New builds a stored, visible command.
func New(name string, m mode.Mode, h Handler, opts ...Option) Command {
	c := Command{Name: name, Mode: m, Store: true, Handler: h}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func firstLine(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

package command

import (
	"fmt"
	"sort"

	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
)

// Registry stores commands per concrete mode.
// Commands registered for mode.Global are stored once per global mode.
type Registry struct {
	commands map[mode.Mode]map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[mode.Mode]map[string]*Command)}
	for _, m := range mode.All() {
		r.commands[m] = make(map[string]*Command)
	}
	return r
}

// Register adds c. Nothing is registered when any expanded mode already has
// a command of that name.
func (r *Registry) Register(c Command) error {
	if c.Name == "" {
		return fmt.Errorf("command: empty name")
	}
	if c.Handler == nil {
		return fmt.Errorf("command %s: nil handler", c.Name)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("command %s: %w: %s", c.Name, mode.ErrModeNotFound, c.Mode)
	}

	modes := c.Mode.Expand()
	for _, m := range modes {
		if _, ok := r.commands[m][c.Name]; ok {
			return fmt.Errorf("%w: %s in %s mode", ErrDuplicate, c.Name, m)
		}
	}
	for _, m := range modes {
		cmd := c
		r.commands[m][c.Name] = &cmd
	}
	log.Debug(log.CatCommand, "Registered command", "name", c.Name, "mode", c.Mode)
	return nil
}

// MustRegister registers every command and panics on the first failure.
func (r *Registry) MustRegister(cmds ...Command) {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Get returns the command named name in mode m. Only exact names match.
func (r *Registry) Get(name string, m mode.Mode) (*Command, error) {
	if cmd, ok := r.commands[m][name]; ok {
		return cmd, nil
	}
	return nil, &NotFoundError{Name: name, Mode: m}
}

// Exists reports whether name is registered in m.
func (r *Registry) Exists(name string, m mode.Mode) bool {
	_, ok := r.commands[m][name]
	return ok
}

// Iterate returns the visible commands of m sorted by name.
// For mode.Global it returns the commands registered for the global group.
func (r *Registry) Iterate(m mode.Mode) []*Command {
	return r.list(m, false)
}

// All is Iterate including hidden commands.
func (r *Registry) All(m mode.Mode) []*Command {
	return r.list(m, true)
}

func (r *Registry) list(m mode.Mode, hidden bool) []*Command {
	source := m
	if m == mode.Global {
		source = mode.Image
	}
	out := make([]*Command, 0, len(r.commands[source]))
	for _, cmd := range r.commands[source] {
		if cmd.Hide && !hidden {
			continue
		}
		if m == mode.Global && cmd.Mode != mode.Global {
			continue
		}
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the visible command names of m sorted.
func (r *Registry) Names(m mode.Mode) []string {
	cmds := r.Iterate(m)
	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name
	}
	return names
}

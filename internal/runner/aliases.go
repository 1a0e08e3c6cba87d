package runner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zjrosen/vimg/internal/mode"
)

// Aliases maps alias names to replacement text per mode. Aliases defined for
// mode.Global apply to image, library and thumbnail.
type Aliases struct {
	table    map[mode.Mode]map[string]string
	onChange []func()
}

// DefaultAliases returns the aliases present without any configuration,
// keyed by mode name.
func DefaultAliases() map[string]map[string]string {
	return map[string]map[string]string{
		"global": {"q": "quit", "e": "open"},
	}
}

// NewAliases creates a table holding DefaultAliases.
func NewAliases() *Aliases {
	a := &Aliases{table: make(map[mode.Mode]map[string]string)}
	_ = a.Load(DefaultAliases())
	return a
}

// Load merges aliases keyed by mode name into the table.
func (a *Aliases) Load(byMode map[string]map[string]string) error {
	for name, aliases := range byMode {
		m, err := mode.ByName(name)
		if err != nil {
			return fmt.Errorf("aliases: %w", err)
		}
		for alias, text := range aliases {
			a.set(alias, text, m)
		}
	}
	return nil
}

// Set defines alias name for m.
func (a *Aliases) Set(name, text string, m mode.Mode) error {
	if name == "" || strings.ContainsAny(name, " \t") {
		return fmt.Errorf("invalid alias name %q", name)
	}
	if !m.Valid() {
		return fmt.Errorf("alias %s: %w", name, mode.ErrModeNotFound)
	}
	a.set(name, text, m)
	a.changed()
	return nil
}

func (a *Aliases) set(name, text string, m mode.Mode) {
	if a.table[m] == nil {
		a.table[m] = make(map[string]string)
	}
	a.table[m][name] = text
}

// Remove deletes alias name from m. It reports whether the alias existed.
func (a *Aliases) Remove(name string, m mode.Mode) bool {
	if _, ok := a.table[m][name]; !ok {
		return false
	}
	delete(a.table[m], name)
	a.changed()
	return true
}

// Get returns the replacement for name in m, falling back to the global
// aliases for the global modes.
func (a *Aliases) Get(name string, m mode.Mode) (string, bool) {
	if text, ok := a.table[m][name]; ok {
		return text, true
	}
	if m == mode.Image || m == mode.Library || m == mode.Thumbnail {
		text, ok := a.table[mode.Global][name]
		return text, ok
	}
	return "", false
}

// Names returns the alias names usable in m, sorted.
func (a *Aliases) Names(m mode.Mode) []string {
	seen := make(map[string]struct{})
	for name := range a.table[m] {
		seen[name] = struct{}{}
	}
	if m == mode.Image || m == mode.Library || m == mode.Thumbnail {
		for name := range a.table[mode.Global] {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export returns the table keyed by mode name.
func (a *Aliases) Export() map[string]map[string]string {
	out := make(map[string]map[string]string, len(a.table))
	for m, aliases := range a.table {
		if len(aliases) == 0 {
			continue
		}
		copied := make(map[string]string, len(aliases))
		for k, v := range aliases {
			copied[k] = v
		}
		out[m.String()] = copied
	}
	return out
}

// OnChange registers a hook run after Set or Remove.
func (a *Aliases) OnChange(fn func()) { a.onChange = append(a.onChange, fn) }

func (a *Aliases) changed() {
	for _, fn := range a.onChange {
		fn()
	}
}

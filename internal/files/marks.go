package files

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// Marks is the ordered set of marked paths.
type Marks struct {
	paths    []string
	onChange []func(count int)
}

// NewMarks creates an empty set.
func NewMarks() *Marks { return &Marks{} }

// OnChange registers a hook run after the set changed.
func (m *Marks) OnChange(fn func(count int)) { m.onChange = append(m.onChange, fn) }

// Marked returns the marked paths in marking order.
func (m *Marks) Marked() []string { return slices.Clone(m.paths) }

// Count returns the number of marked paths.
func (m *Marks) Count() int { return len(m.paths) }

// IsMarked reports whether path is marked.
func (m *Marks) IsMarked(path string) bool { return slices.Contains(m.paths, path) }

// Toggle marks each unmarked path and unmarks each marked one.
func (m *Marks) Toggle(paths ...string) {
	for _, p := range paths {
		if i := slices.Index(m.paths, p); i >= 0 {
			m.paths = slices.Delete(m.paths, i, i+1)
		} else {
			m.paths = append(m.paths, p)
		}
	}
	m.changed()
}

// Mark adds paths that are not marked yet.
func (m *Marks) Mark(paths ...string) {
	for _, p := range paths {
		if !slices.Contains(m.paths, p) {
			m.paths = append(m.paths, p)
		}
	}
	m.changed()
}

// Clear unmarks everything.
func (m *Marks) Clear() {
	m.paths = nil
	m.changed()
}

func (m *Marks) changed() {
	for _, fn := range m.onChange {
		fn(len(m.paths))
	}
}

// Resolve expands each argument to paths. Existing paths are taken as they
// are; anything else is a glob matched against candidates, by base name
// unless the pattern contains a separator.
func Resolve(args []string, candidates []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			if abs, err := filepath.Abs(arg); err == nil {
				arg = abs
			}
			out = append(out, arg)
			continue
		}
		g, err := glob.Compile(arg, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		byBase := !strings.ContainsRune(arg, filepath.Separator)
		for _, c := range candidates {
			subject := c
			if byBase {
				subject = filepath.Base(c)
			}
			if g.Match(subject) {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

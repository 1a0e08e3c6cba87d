package files

import "github.com/zjrosen/vimg/internal/mode"

// ModeSource reports the active mode.
type ModeSource interface {
	Current() (mode.Mode, error)
}

// PathReceiver answers "which path is current" for every mode. Modes without
// a source of their own use the image file list.
type PathReceiver struct {
	list    *FileList
	modes   ModeSource
	sources map[mode.Mode]func() string
}

// NewPathReceiver creates a receiver falling back to list.
func NewPathReceiver(list *FileList, modes ModeSource) *PathReceiver {
	return &PathReceiver{list: list, modes: modes, sources: make(map[mode.Mode]func() string)}
}

// SetSource makes fn the current path provider for m.
func (r *PathReceiver) SetSource(m mode.Mode, fn func() string) { r.sources[m] = fn }

// CurrentPath returns the current path of m.
func (r *PathReceiver) CurrentPath(m mode.Mode) string {
	if fn, ok := r.sources[m]; ok {
		return fn()
	}
	return r.list.Current()
}

// Current returns the current path of the active mode.
func (r *PathReceiver) Current() string {
	m, err := r.modes.Current()
	if err != nil {
		return r.list.Current()
	}
	return r.CurrentPath(m)
}

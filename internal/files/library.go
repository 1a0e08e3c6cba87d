package files

import "slices"

// Library is the listing of the working directory shown in library mode:
// directories first, then images.
type Library struct {
	entries  []string
	selected int
	dirs     int
}

// NewLibrary creates an empty library.
func NewLibrary() *Library { return &Library{} }

// Load replaces the entries, keeping the selection on the same path if possible.
func (l *Library) Load(images, directories []string) {
	previous := l.Selected()
	l.entries = append(slices.Clone(directories), images...)
	l.dirs = len(directories)
	if i := slices.Index(l.entries, previous); i >= 0 {
		l.selected = i
	} else {
		l.selected = max(0, min(len(l.entries)-1, l.selected))
	}
}

// Entries returns the listed paths.
func (l *Library) Entries() []string { return l.entries }

// IsDir reports whether entry i is a directory.
func (l *Library) IsDir(i int) bool { return i >= 0 && i < l.dirs }

// Len returns the number of entries.
func (l *Library) Len() int { return len(l.entries) }

// Index returns the selected position.
func (l *Library) Index() int { return l.selected }

// Selected returns the selected path, empty when there are no entries.
func (l *Library) Selected() string {
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[l.selected]
}

// Scroll moves the selection by delta without wrapping.
func (l *Library) Scroll(delta int) {
	if len(l.entries) == 0 {
		return
	}
	l.selected = max(0, min(len(l.entries)-1, l.selected+delta))
}

// Select selects entry n counted from 1; -1 selects the last entry.
func (l *Library) Select(n int) {
	if len(l.entries) == 0 {
		return
	}
	if n > 0 {
		n--
	}
	l.selected = mod(n, len(l.entries))
}

// SelectPath selects path, reporting whether it is listed.
func (l *Library) SelectPath(path string) bool {
	i := slices.Index(l.entries, path)
	if i < 0 {
		return false
	}
	l.selected = i
	return true
}

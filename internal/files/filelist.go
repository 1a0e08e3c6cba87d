package files

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
)

// FileList is the ordered list of images shown in image mode.
type FileList struct {
	paths    []string
	index    int
	onChange []func(path string)
}

// NewFileList creates an empty list.
func NewFileList() *FileList { return &FileList{} }

// OnChange registers a hook run when the current path changes.
func (f *FileList) OnChange(fn func(path string)) { f.onChange = append(f.onChange, fn) }

// Load replaces the list with paths and selects focused. When focused is not
// in paths the index is kept, clamped to the new length.
func (f *FileList) Load(paths []string, focused string) {
	previous := f.Current()
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		if a, err := filepath.Abs(p); err == nil {
			p = a
		}
		abs = append(abs, p)
	}
	f.paths = abs

	if focused != "" {
		if a, err := filepath.Abs(focused); err == nil {
			focused = a
		}
	}
	if i := slices.Index(abs, focused); i >= 0 {
		f.index = i
	} else {
		f.index = max(0, min(len(abs)-1, f.index))
	}
	f.changed(previous)
}

// Clear empties the list.
func (f *FileList) Clear() {
	previous := f.Current()
	f.paths = nil
	f.index = 0
	f.changed(previous)
}

// Paths returns a copy of the list.
func (f *FileList) Paths() []string { return slices.Clone(f.paths) }

// Len returns the number of paths.
func (f *FileList) Len() int { return len(f.paths) }

// Index returns the zero-based index of the current path.
func (f *FileList) Index() int { return f.index }

// Current returns the current path, empty when the list is empty.
func (f *FileList) Current() string {
	if len(f.paths) == 0 {
		return ""
	}
	return f.paths[f.index]
}

// Next moves count images forward, wrapping around.
func (f *FileList) Next(count int) { f.move(count) }

// Prev moves count images back, wrapping around.
func (f *FileList) Prev(count int) { f.move(-count) }

func (f *FileList) move(delta int) {
	if len(f.paths) == 0 {
		return
	}
	f.set(mod(f.index+delta, len(f.paths)))
}

// Goto selects the image number n, counted from 1. Negative numbers count
// from the end, so -1 is the last image.
func (f *FileList) Goto(n int) error {
	if len(f.paths) == 0 {
		return fmt.Errorf("no images loaded")
	}
	if n > 0 {
		n--
	}
	f.set(mod(n, len(f.paths)))
	return nil
}

func (f *FileList) set(index int) {
	previous := f.Current()
	f.index = index
	f.changed(previous)
}

func (f *FileList) changed(previous string) {
	current := f.Current()
	if current == previous {
		return
	}
	for _, fn := range f.onChange {
		fn(current)
	}
}

// IndexString returns the 1-based index zero padded to the width of the total.
func (f *FileList) IndexString() string {
	if len(f.paths) == 0 {
		return ""
	}
	total := strconv.Itoa(len(f.paths))
	return fmt.Sprintf("%0*d", len(total), f.index+1)
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

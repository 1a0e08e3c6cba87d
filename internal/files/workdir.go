package files

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/vimg/internal/log"
)

// WorkingDirectory is the directory the library shows and relative paths
// resolve against.
type WorkingDirectory struct {
	dir         string
	showHidden  bool
	chdir       bool
	images      []string
	directories []string
	onLoad      []func(dir string, images, directories []string)
}

// WorkingDirectoryConfig configures a WorkingDirectory.
type WorkingDirectoryConfig struct {
	ShowHidden bool
	// ChangeProcessDir also moves the process with os.Chdir.
	ChangeProcessDir bool
}

// NewWorkingDirectory creates a working directory that has not loaded anything yet.
func NewWorkingDirectory(cfg WorkingDirectoryConfig) *WorkingDirectory {
	return &WorkingDirectory{showHidden: cfg.ShowHidden, chdir: cfg.ChangeProcessDir}
}

// OnLoad registers a hook run after the directory content was (re)loaded.
func (w *WorkingDirectory) OnLoad(fn func(dir string, images, directories []string)) {
	w.onLoad = append(w.onLoad, fn)
}

// Dir returns the absolute working directory.
func (w *WorkingDirectory) Dir() string { return w.dir }

// Images returns the images of the working directory.
func (w *WorkingDirectory) Images() []string { return w.images }

// Directories returns the subdirectories of the working directory.
func (w *WorkingDirectory) Directories() []string { return w.directories }

// ShowHidden reports whether dot files are listed.
func (w *WorkingDirectory) ShowHidden() bool { return w.showHidden }

// SetShowHidden changes whether dot files are listed and reloads.
func (w *WorkingDirectory) SetShowHidden(show bool) error {
	w.showHidden = show
	if w.dir == "" {
		return nil
	}
	return w.Reload()
}

// Chdir makes dir the working directory and loads its content.
func (w *WorkingDirectory) Chdir(dir string) error {
	abs, err := filepath.Abs(ExpandHome(dir))
	if err != nil {
		return err
	}
	if !IsDir(abs) {
		return fmt.Errorf("not a directory: %s", dir)
	}
	if w.chdir {
		if err := os.Chdir(abs); err != nil {
			return fmt.Errorf("chdir %s: %w", abs, err)
		}
	}
	if abs == w.dir {
		return nil
	}
	log.Debug(log.CatFiles, "Changing working directory", "dir", abs)
	w.dir = abs
	return w.Reload()
}

// Reload lists the working directory again.
func (w *WorkingDirectory) Reload() error {
	paths, err := ListDir(w.dir, w.showHidden)
	if err != nil {
		return err
	}
	w.images, w.directories = Supported(paths)
	log.Debug(log.CatFiles, "Loaded working directory", "dir", w.dir,
		"images", len(w.images), "directories", len(w.directories))
	for _, fn := range w.onLoad {
		fn(w.dir, w.images, w.directories)
	}
	return nil
}

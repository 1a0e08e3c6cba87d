package files

import (
	"path/filepath"
	"slices"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
)

// Modes is the part of the mode registry files needs.
type Modes interface {
	Enter(m mode.Mode) error
}

// Opener opens paths given on the command line, by commands or through pipes.
type Opener struct {
	wd    *WorkingDirectory
	list  *FileList
	modes Modes
}

// NewOpener creates an opener.
func NewOpener(wd *WorkingDirectory, list *FileList, modes Modes) *Opener {
	return &Opener{wd: wd, list: list, modes: modes}
}

// Open shows the images among paths in image mode. Without images the first
// directory is opened in library mode. With neither a CommandError is returned.
func (o *Opener) Open(paths []string) error {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		p = ExpandHome(p)
		if !filepath.IsAbs(p) && o.wd.Dir() != "" {
			p = filepath.Join(o.wd.Dir(), p)
		}
		resolved = append(resolved, filepath.Clean(p))
	}

	images, directories := Supported(resolved)
	switch {
	case len(images) > 0:
		if err := o.wd.Chdir(filepath.Dir(images[0])); err != nil {
			return command.Errorf("%v", err)
		}
		if len(images) == 1 && slices.Contains(o.wd.Images(), images[0]) {
			o.list.Load(o.wd.Images(), images[0])
		} else {
			o.list.Load(images, images[0])
		}
		log.Debug(log.CatFiles, "Opened images", "count", len(images), "current", o.list.Current())
		return o.modes.Enter(mode.Image)
	case len(directories) > 0:
		if err := o.wd.Chdir(directories[0]); err != nil {
			return command.Errorf("%v", err)
		}
		log.Debug(log.CatFiles, "Opened directory", "dir", o.wd.Dir())
		return o.modes.Enter(mode.Library)
	}
	return command.Errorf("No valid paths")
}

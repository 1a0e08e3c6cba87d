package files

import (
	"path/filepath"
	"strconv"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/status"
)

// Set bundles the file collaborators so their commands and status modules can
// be registered together.
type Set struct {
	WorkingDirectory *WorkingDirectory
	FileList         *FileList
	Library          *Library
	Marks            *Marks
	Receiver         *PathReceiver
	Opener           *Opener
}

// Commands returns the file, library and mark commands.
func (s *Set) Commands() []command.Command {
	return []command.Command{
		command.New("open", mode.Global, s.open,
			command.Describe("Open one or more paths.\n\nImages open in image mode, otherwise the first directory opens in library mode.")),
		command.New("next", mode.Global, s.next,
			command.Describe("Select next image.\n\ncount: Number of images to skip.")),
		command.New("prev", mode.Global, s.prev,
			command.Describe("Select previous image.\n\ncount: Number of images to skip.")),
		command.New("goto", mode.Image, s.gotoImage,
			command.Describe("Select image number INDEX, -1 is the last image.\n\ncount: Select image number [count] instead.")),
		command.New("goto", mode.Library, s.gotoEntry,
			command.Describe("Select entry number INDEX, -1 is the last entry.\n\ncount: Select entry number [count] instead.")),
		command.New("scroll", mode.Library, s.scroll,
			command.Describe("Scroll the library.\n\nusage: scroll up|down\ncount: Number of entries to scroll.")),
		command.New("open-selected", mode.Library, s.openSelected,
			command.Describe("Open the selected directory or image.")),
		command.New("up", mode.Library, s.up,
			command.Describe("Go to the parent directory.\n\ncount: Number of levels to go up.")),
		command.New("mark", mode.Global, s.mark,
			command.Describe("Toggle the mark of paths or glob patterns.\n\nusage: mark PATH|GLOB...")),
		command.New("mark-clear", mode.Global, s.markClear,
			command.Describe("Unmark all paths.")),
	}
}

func (s *Set) open(call command.Call) error {
	if err := command.RequireArgs(call.Name, call.Args, 1, -1); err != nil {
		return err
	}
	return s.Opener.Open(call.Args)
}

func (s *Set) next(call command.Call) error {
	if s.FileList.Len() == 0 {
		return command.Errorf("No images loaded")
	}
	s.FileList.Next(call.CountOr(1))
	return nil
}

func (s *Set) prev(call command.Call) error {
	if s.FileList.Len() == 0 {
		return command.Errorf("No images loaded")
	}
	s.FileList.Prev(call.CountOr(1))
	return nil
}

func indexArg(call command.Call) (int, error) {
	if n, ok := call.ParseCount(); ok {
		return n, command.RequireArgs(call.Name, call.Args, 0, 1)
	}
	if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
		return 0, err
	}
	return command.IntArg(call.Name, call.Args[0])
}

func (s *Set) gotoImage(call command.Call) error {
	n, err := indexArg(call)
	if err != nil {
		return err
	}
	if err := s.FileList.Goto(n); err != nil {
		return command.Errorf("%v", err)
	}
	return nil
}

func (s *Set) gotoEntry(call command.Call) error {
	n, err := indexArg(call)
	if err != nil {
		return err
	}
	s.Library.Select(n)
	return nil
}

func (s *Set) scroll(call command.Call) error {
	if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
		return err
	}
	step := call.CountOr(1)
	switch call.Args[0] {
	case "down":
		s.Library.Scroll(step)
	case "up":
		s.Library.Scroll(-step)
	default:
		return &command.ArgumentError{Command: call.Name, Msg: "direction must be up or down, got " + strconv.Quote(call.Args[0])}
	}
	return nil
}

func (s *Set) openSelected(call command.Call) error {
	selected := s.Library.Selected()
	if selected == "" {
		return command.Errorf("No path selected")
	}
	if s.Library.IsDir(s.Library.Index()) {
		if err := s.WorkingDirectory.Chdir(selected); err != nil {
			return command.Errorf("%v", err)
		}
		return nil
	}
	return s.Opener.Open([]string{selected})
}

func (s *Set) up(call command.Call) error {
	dir := s.WorkingDirectory.Dir()
	for range call.CountOr(1) {
		dir = filepath.Dir(dir)
	}
	previous := s.WorkingDirectory.Dir()
	if err := s.WorkingDirectory.Chdir(dir); err != nil {
		return command.Errorf("%v", err)
	}
	s.Library.SelectPath(previous)
	return nil
}

func (s *Set) mark(call command.Call) error {
	if err := command.RequireArgs(call.Name, call.Args, 1, -1); err != nil {
		return err
	}
	candidates := append(append([]string(nil), s.WorkingDirectory.Directories()...), s.WorkingDirectory.Images()...)
	paths, err := Resolve(call.Args, candidates)
	if err != nil {
		return &command.ArgumentError{Command: call.Name, Msg: err.Error()}
	}
	if len(paths) == 0 {
		return command.Warnf("Nothing matched %v", call.Args)
	}
	s.Marks.Toggle(paths...)
	return nil
}

func (s *Set) markClear(call command.Call) error {
	s.Marks.Clear()
	return nil
}

// RegisterModules adds the file related status modules.
func (s *Set) RegisterModules(r *status.Registry) {
	r.MustRegister("{abspath}", s.FileList.Current)
	r.MustRegister("{basename}", func() string {
		if p := s.FileList.Current(); p != "" {
			return filepath.Base(p)
		}
		return ""
	})
	r.MustRegister("{index}", s.FileList.IndexString)
	r.MustRegister("{total}", func() string {
		if s.FileList.Len() == 0 {
			return ""
		}
		return strconv.Itoa(s.FileList.Len())
	})
	r.MustRegister("{filesize}", func() string { return Size(s.Receiver.Current()) })
	r.MustRegister("{modified}", func() string { return Modified(s.Receiver.Current()) })
	r.MustRegister("{pwd}", func() string { return CollapseHome(s.WorkingDirectory.Dir()) })
	r.MustRegister("{mark-count}", func() string {
		if s.Marks.Count() == 0 {
			return ""
		}
		return strconv.Itoa(s.Marks.Count()) + " marked"
	})
	r.MustRegister("{library-index}", func() string {
		if s.Library.Len() == 0 {
			return ""
		}
		return strconv.Itoa(s.Library.Index()+1) + "/" + strconv.Itoa(s.Library.Len())
	})
}

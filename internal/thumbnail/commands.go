package thumbnail

import (
	"strconv"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/status"
)

// ImageList is the image file list the grid selects into.
type ImageList interface {
	Goto(n int) error
}

// Modes is the part of the mode registry thumbnail commands need.
type Modes interface {
	Enter(m mode.Mode) error
}

// Commands returns the thumbnail mode commands operating on g.
func Commands(g *Grid, images ImageList, modes Modes) []command.Command {
	return []command.Command{
		command.New("goto", mode.Thumbnail, func(call command.Call) error {
			n, ok := call.ParseCount()
			if !ok {
				if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
					return err
				}
				var err error
				if n, err = command.IntArg(call.Name, call.Args[0]); err != nil {
					return err
				}
			}
			if g.Len() == 0 {
				return command.Errorf("No thumbnails")
			}
			switch {
			case n > 0:
				g.Select(n - 1)
			case n < 0:
				g.Select(g.Len() + n)
			default:
				g.Select(0)
			}
			return nil
		}, command.Describe("Select thumbnail number INDEX, -1 is the last one.\n\ncount: Select thumbnail number [count] instead.")),

		command.New("scroll", mode.Thumbnail, func(call command.Call) error {
			if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
				return err
			}
			if err := g.Move(call.Args[0], call.CountOr(1)); err != nil {
				return &command.ArgumentError{Command: call.Name, Msg: err.Error()}
			}
			return nil
		}, command.Describe("Scroll the thumbnail grid.\n\nusage: scroll left|right|up|down\ncount: Number of cells to scroll.")),

		command.New("zoom", mode.Thumbnail, func(call command.Call) error {
			if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
				return err
			}
			switch call.Args[0] {
			case "in":
				g.Zoom(true, call.CountOr(1))
			case "out":
				g.Zoom(false, call.CountOr(1))
			default:
				return &command.ArgumentError{Command: call.Name, Msg: "direction must be in or out, got " + strconv.Quote(call.Args[0])}
			}
			return nil
		}, command.Describe("Zoom the thumbnail grid.\n\nusage: zoom in|out")),

		command.New("open-selected", mode.Thumbnail, func(call command.Call) error {
			if g.Len() == 0 {
				return command.Errorf("No thumbnails")
			}
			if err := images.Goto(g.Index() + 1); err != nil {
				return command.Errorf("%v", err)
			}
			return modes.Enter(mode.Image)
		}, command.Describe("Open the selected thumbnail in image mode.")),
	}
}

// RegisterModules adds the thumbnail status modules.
func RegisterModules(r *status.Registry, g *Grid) {
	r.MustRegister("{thumbnail-name}", g.Name)
	r.MustRegister("{thumbnail-size}", func() string { return strconv.Itoa(g.Size()) })
	r.MustRegister("{thumbnail-index}", g.IndexString)
	r.MustRegister("{thumbnail-total}", func() string {
		if g.Len() == 0 {
			return ""
		}
		return strconv.Itoa(g.Len())
	})
}

package manipulate

import (
	"image"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/status"
)

// Modes is the part of the mode registry the commands use.
type Modes interface {
	Enter(m mode.Mode) error
	Leave(m mode.Mode) error
}

// ImageSource loads the image currently shown in image mode.
type ImageSource interface {
	CurrentImage() (image.Image, string, error)
}

// Commands returns the manipulate commands, plus "manipulate" and "write"
// for image mode.
func (m *Manipulator) Commands(modes Modes, images ImageSource) []command.Command {
	c := &commands{m: m, modes: modes, images: images}
	return []command.Command{
		command.New("manipulate", mode.Image, c.manipulate,
			command.Describe("Enter manipulate mode for the current image.")),
		command.New("write", mode.Image, c.write,
			command.Describe("Write the accepted manipulation to disk.\n\nusage: write [PATH]")),
		command.New("accept", mode.Manipulate, c.accept,
			command.Describe("Leave manipulate keeping the changes.")),
		command.New("discard", mode.Manipulate, c.discard,
			command.Describe("Leave manipulate discarding the changes.")),
		command.New(Brightness, mode.Manipulate, c.focusOrSet(Brightness),
			command.Describe("Manipulate brightness.\n\nWithout value or count only focus brightness.\ncount: Set brightness to [count].")),
		command.New(Contrast, mode.Manipulate, c.focusOrSet(Contrast),
			command.Describe("Manipulate contrast.\n\nWithout value or count only focus contrast.\ncount: Set contrast to [count].")),
		command.New("increase", mode.Manipulate, c.step(1),
			command.Describe("Increase the current manipulation.\n\ncount: multiplier")),
		command.New("decrease", mode.Manipulate, c.step(-1),
			command.Describe("Decrease the current manipulation.\n\ncount: multiplier")),
		command.New("set", mode.Manipulate, c.set,
			command.Describe("Set the current manipulation to VALUE.\n\ncount: Set the manipulation to [count] instead.")),
	}
}

type commands struct {
	m      *Manipulator
	modes  Modes
	images ImageSource
	path   string
}

func (c *commands) manipulate(call command.Call) error {
	img, path, err := c.images.CurrentImage()
	if err != nil {
		return command.Errorf("Cannot manipulate: %v", err)
	}
	c.path = path
	c.m.SetSource(img)
	return c.modes.Enter(mode.Manipulate)
}

func (c *commands) write(call command.Call) error {
	if err := command.RequireArgs(call.Name, call.Args, 0, 1); err != nil {
		return err
	}
	if c.m.Pending() {
		return command.Errorf("Manipulation still processing")
	}
	img := c.m.Accepted()
	if img == nil {
		return command.Errorf("No manipulated image to write")
	}
	path := c.path
	if len(call.Args) == 1 {
		path = call.Args[0]
	}
	if err := imaging.Save(img, path); err != nil {
		return command.Errorf("Error writing %s: %v", path, err)
	}
	log.Info(log.CatManipulate, "Wrote "+path)
	return nil
}

func (c *commands) accept(call command.Call) error {
	c.m.Accept()
	return c.modes.Leave(mode.Manipulate)
}

func (c *commands) discard(call command.Call) error {
	c.m.Reset()
	return c.modes.Leave(mode.Manipulate)
}

func (c *commands) focusOrSet(name string) command.Handler {
	return func(call command.Call) error {
		value, ok, err := command.OptionalIntArg(call.Name, call.Args)
		if err != nil {
			return err
		}
		if n, counted := call.ParseCount(); counted {
			value, ok = n, true
		}
		if !ok {
			return c.m.Focus(name)
		}
		return c.edit(c.m.Set(name, value))
	}
}

func (c *commands) step(sign int) command.Handler {
	return func(call command.Call) error {
		if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
			return err
		}
		value, err := command.IntArg(call.Name, call.Args[0])
		if err != nil {
			return err
		}
		return c.edit(c.m.Increase(sign * value * call.CountOr(1)))
	}
}

func (c *commands) set(call command.Call) error {
	if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
		return err
	}
	value, err := command.IntArg(call.Name, call.Args[0])
	if err != nil {
		return err
	}
	if n, ok := call.ParseCount(); ok {
		value = n
	}
	return c.edit(c.m.SetCurrent(value))
}

func (c *commands) edit(err error) error {
	if err != nil {
		return command.Errorf("%v", err)
	}
	return nil
}

// RegisterModules adds {processing}, {brightness}, {contrast} and {manipulation}.
func (m *Manipulator) RegisterModules(r *status.Registry) {
	r.MustRegister("{processing}", func() string {
		if m.Processing() {
			return "processing..."
		}
		return ""
	})
	r.MustRegister("{brightness}", func() string { return strconv.Itoa(m.values.Brightness) })
	r.MustRegister("{contrast}", func() string { return strconv.Itoa(m.values.Contrast) })
	r.MustRegister("{manipulation}", func() string { return m.current })
}

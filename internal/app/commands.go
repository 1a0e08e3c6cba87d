package app

import (
	"strings"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/files"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/thumbnail"
)

// register adds every command and status module.
func (m *Model) register() {
	set := &files.Set{
		WorkingDirectory: m.wd,
		FileList:         m.list,
		Library:          m.library,
		Marks:            m.marks,
		Receiver:         m.receiver,
		Opener:           m.opener,
	}
	m.commands.MustRegister(m.appCommands()...)
	m.commands.MustRegister(set.Commands()...)
	m.commands.MustRegister(m.runner.Commands()...)
	m.commands.MustRegister(m.manipulator.Commands(m.modes, m)...)
	m.commands.MustRegister(thumbnail.Commands(m.grid, m.list, m.modes)...)
	m.commands.MustRegister(m.history.Commands(m.commandline)...)

	set.RegisterModules(m.status)
	m.manipulator.RegisterModules(m.status)
	thumbnail.RegisterModules(m.status, m.grid)
	m.status.MustRegister("{mode}", func() string {
		current, err := m.modes.Current()
		if err != nil {
			return ""
		}
		return strings.ToUpper(current.String())
	})
	m.status.MustRegister("{keys}", m.keys.Pending)
}

func (m *Model) appCommands() []command.Command {
	return []command.Command{
		command.New("enter", mode.Global, m.modeCommand(m.modes.Enter),
			command.Describe("Enter another mode.\n\nusage: enter MODE")),
		command.New("leave", mode.Global, m.modeCommand(m.modes.Leave),
			command.Describe("Leave a mode and return to the mode active before it.\n\nusage: leave MODE")),
		command.New("toggle", mode.Global, m.modeCommand(m.modes.Toggle),
			command.Describe("Toggle a mode: leave it when visible, enter it otherwise.\n\nusage: toggle MODE")),
		command.New("command", mode.Global, m.commandCommand,
			command.NoStore(),
			command.Describe("Enter command mode.\n\nusage: command [--text TEXT]")),
		command.New("leave-commandline", mode.Command, m.leaveCommandline,
			command.NoStore(),
			command.Describe("Leave command mode.")),
		command.New("quit", mode.Global, m.quitCommand,
			command.NoStore(),
			command.Describe("Quit vimg.")),
	}
}

func (m *Model) modeCommand(apply func(mode.Mode) error) command.Handler {
	return func(call command.Call) error {
		if err := command.RequireArgs(call.Name, call.Args, 1, 1); err != nil {
			return err
		}
		target, err := mode.ByName(call.Args[0])
		if err != nil || !target.Concrete() {
			return &command.ArgumentError{Command: call.Name, Msg: "invalid mode " + call.Args[0], Err: err}
		}
		return apply(target)
	}
}

func (m *Model) commandCommand(call command.Call) error {
	fs := command.NewFlagSet(call.Name)
	text := fs.String("text", "", "text to start with")
	if err := command.Bind(fs, call.Args); err != nil {
		return err
	}
	if err := command.RequireArgs(call.Name, fs.Args(), 0, 0); err != nil {
		return err
	}
	if err := m.modes.Enter(mode.Command); err != nil {
		return err
	}
	m.commandline.SetText(*text)
	return nil
}

func (m *Model) leaveCommandline(call command.Call) error {
	return m.modes.Leave(mode.Command)
}

func (m *Model) quitCommand(call command.Call) error {
	m.quit()
	return nil
}

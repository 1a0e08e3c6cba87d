package runner

import (
	"strings"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/mode"
)

// Commands returns the commands the runner provides.
func (r *Runner) Commands() []command.Command {
	return []command.Command{
		command.New("repeat-command", mode.Global, r.repeatCommand,
			command.NoStore(),
			command.Describe("Repeat the last command.\n\ncount: Repeat count passed to the command instead of the stored one.")),
		command.New("alias", mode.Global, r.aliasCommand,
			command.Describe("Add an alias for a command.\n\nusage: alias [--mode MODE] NAME TEXT...")),
		command.New("unalias", mode.Global, r.unaliasCommand,
			command.Describe("Remove an alias.\n\nusage: unalias [--mode MODE] NAME")),
	}
}

func (r *Runner) repeatCommand(call command.Call) error {
	return r.Repeat(call.Count, call.Mode)
}

func parseAliasMode(name string, args []string) (mode.Mode, []string, error) {
	fs := command.NewFlagSet(name)
	fs.SetInterspersed(false)
	modeName := fs.String("mode", "global", "mode the alias is valid in")
	if err := command.Bind(fs, args); err != nil {
		return mode.Global, nil, err
	}
	m, err := mode.ByName(*modeName)
	if err != nil {
		return mode.Global, nil, &command.ArgumentError{Command: name, Msg: "invalid mode", Err: err}
	}
	return m, fs.Args(), nil
}

func (r *Runner) aliasCommand(call command.Call) error {
	m, args, err := parseAliasMode(call.Name, call.Args)
	if err != nil {
		return err
	}
	if err := command.RequireArgs(call.Name, args, 2, -1); err != nil {
		return err
	}
	name, text := args[0], strings.Join(args[1:], " ")
	for _, concrete := range m.Expand() {
		if r.commands.Exists(name, concrete) {
			return command.Errorf("Not overriding default command %s", name)
		}
	}
	if err := r.aliases.Set(name, text, m); err != nil {
		return &command.ArgumentError{Command: call.Name, Msg: err.Error()}
	}
	return nil
}

func (r *Runner) unaliasCommand(call command.Call) error {
	m, args, err := parseAliasMode(call.Name, call.Args)
	if err != nil {
		return err
	}
	if err := command.RequireArgs(call.Name, args, 1, 1); err != nil {
		return err
	}
	if !r.aliases.Remove(args[0], m) {
		return command.Warnf("No alias %s in %s mode", args[0], m)
	}
	return nil
}

package command

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/pflag"
)

// NewFlagSet returns a flag set for parsing a command's arguments.
// Parse errors are returned rather than printed.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// Bind parses args into fs. Failures become an ArgumentError.
func Bind(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return &ArgumentError{Command: fs.Name(), Msg: "invalid arguments", Err: err}
	}
	return nil
}

// RequireArgs checks the positional argument count. A negative max means no
// upper bound.
func RequireArgs(name string, args []string, minArgs, maxArgs int) error {
	n := len(args)
	switch {
	case n < minArgs:
		return &ArgumentError{Command: name, Msg: fmt.Sprintf("expected at least %d argument(s), got %d", minArgs, n)}
	case maxArgs >= 0 && n > maxArgs:
		return &ArgumentError{Command: name, Msg: fmt.Sprintf("expected at most %d argument(s), got %d", maxArgs, n)}
	}
	return nil
}

// IntArg parses value as an integer argument of the named command.
// Negative numbers are accepted, which pflag would read as shorthand flags.
func IntArg(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ArgumentError{Command: name, Msg: fmt.Sprintf("invalid integer %q", value)}
	}
	return n, nil
}

// OptionalIntArg parses args[0] when present.
func OptionalIntArg(name string, args []string) (int, bool, error) {
	if err := RequireArgs(name, args, 0, 1); err != nil {
		return 0, false, err
	}
	if len(args) == 0 {
		return 0, false, nil
	}
	n, err := IntArg(name, args[0])
	return n, err == nil, err
}

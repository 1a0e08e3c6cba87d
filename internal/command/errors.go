package command

import (
	"errors"
	"fmt"

	"github.com/zjrosen/vimg/internal/mode"
)

// ErrCommandNotFound matches every NotFoundError.
var ErrCommandNotFound = errors.New("command not found")

// ErrDuplicate is returned when a name is registered twice for the same mode.
var ErrDuplicate = errors.New("duplicate command")

// NotFoundError reports a name with no command in the given mode.
type NotFoundError struct {
	Name string
	Mode mode.Mode
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: unknown command for mode %s", e.Name, e.Mode)
}

// Is allows errors.Is(err, ErrCommandNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrCommandNotFound
}

// ArgumentError reports arguments a command could not bind.
type ArgumentError struct {
	Command string
	Msg     string
	Err     error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// CommandError reports a command that ran and failed.
type CommandError struct {
	Msg string
}

func (e *CommandError) Error() string { return e.Msg }

// Errorf builds a CommandError.
func Errorf(format string, args ...any) error {
	return &CommandError{Msg: fmt.Sprintf(format, args...)}
}

// CommandWarning reports a command that completed with something to tell the user.
type CommandWarning struct {
	Msg string
}

func (e *CommandWarning) Error() string { return e.Msg }

// Warnf builds a CommandWarning.
func Warnf(format string, args ...any) error {
	return &CommandWarning{Msg: fmt.Sprintf(format, args...)}
}

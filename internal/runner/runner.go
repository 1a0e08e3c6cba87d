// Package runner turns command text into command invocations: alias
// substitution, wildcard expansion, count parsing, dispatch through the
// command registry, repeat, and shell commands prefixed with !.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/status"
	"github.com/zjrosen/vimg/internal/tracing"
)

// PathSource resolves the path % expands to in a mode.
type PathSource interface {
	CurrentPath(m mode.Mode) string
}

// MarkSource lists the paths %m expands to.
type MarkSource interface {
	Marked() []string
}

// ShellRunner executes text starting with !.
type ShellRunner interface {
	Run(text string) error
}

// LastCommand is what repeat-command re-runs.
type LastCommand struct {
	Count string
	Name  string
	Args  []string
}

// ParseError reports text the quoting-aware splitter rejected.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Deps holds the runner's collaborators. Commands and Status are required.
type Deps struct {
	Commands *command.Registry
	Status   *status.Registry
	Aliases  *Aliases
	Paths    PathSource
	Marks    MarkSource
	Shell    ShellRunner
	Tracer   trace.Tracer
}

// Runner dispatches command text. It runs on the update loop only.
type Runner struct {
	commands *command.Registry
	status   *status.Registry
	aliases  *Aliases
	paths    PathSource
	marks    MarkSource
	shell    ShellRunner
	tracer   trace.Tracer
	last     map[mode.Mode]LastCommand
}

// New creates a runner.
func New(deps Deps) *Runner {
	if deps.Aliases == nil {
		deps.Aliases = NewAliases()
	}
	if deps.Tracer == nil {
		deps.Tracer = tracing.Noop().Tracer()
	}
	return &Runner{
		commands: deps.Commands,
		status:   deps.Status,
		aliases:  deps.Aliases,
		paths:    deps.Paths,
		marks:    deps.Marks,
		shell:    deps.Shell,
		tracer:   deps.Tracer,
		last:     make(map[mode.Mode]LastCommand),
	}
}

// Aliases returns the alias table.
func (r *Runner) Aliases() *Aliases { return r.aliases }

// Run runs text in mode m.
func (r *Runner) Run(text string, m mode.Mode) error {
	return r.run(text, "", m)
}

// RunWithCount runs text in mode m with count prepended.
func (r *Runner) RunWithCount(text string, count int, m mode.Mode) error {
	return r.run(text, strconv.Itoa(count), m)
}

func (r *Runner) run(text, count string, m mode.Mode) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	_, span := tracing.StartCommand(context.Background(), r.tracer, text, m.String())

	text = r.SubstituteAlias(text, m)
	text = r.ExpandWildcards(text, m)

	var err error
	if strings.HasPrefix(text, "!") {
		err = r.external(text)
		tracing.End(span, err, errorType(err))
		return err
	}

	err = r.Command(count+text, m)
	tracing.End(span, err, errorType(err))
	return err
}

func (r *Runner) external(text string) error {
	if r.shell == nil {
		err := command.Errorf("Running external commands is not supported")
		log.Error(log.CatExternal, err.Error(), "text", text)
		return err
	}
	if err := r.shell.Run(text); err != nil {
		log.ErrorErr(log.CatExternal, "Error starting shell command", err, "text", text)
		return err
	}
	return nil
}

// Command parses text and runs the internal command it names.
// A parse failure is logged and nothing else happens. Otherwise status is
// updated once the command has run, whatever its outcome.
func (r *Runner) Command(text string, m mode.Mode) error {
	count, name, args, err := Parse(text)
	if err != nil {
		log.Error(log.CatCommand, err.Error())
		return err
	}
	defer r.status.Update()
	return r.dispatch(count, name, args, m)
}

func (r *Runner) dispatch(count, name string, args []string, m mode.Mode) error {
	cmd, err := r.commands.Get(name, m)
	if err != nil {
		report(name, err)
		return reportedError{err}
	}
	if cmd.Store {
		r.last[m] = LastCommand{Count: count, Name: name, Args: append([]string(nil), args...)}
	}
	log.Debug(log.CatCommand, "Running command", "name", name, "mode", m, "count", count, "args", args)

	err = cmd.Handler(command.Call{Mode: m, Name: name, Count: count, Args: args})
	if err != nil {
		report(name, err)
		return reportedError{err}
	}
	return nil
}

// Repeat re-runs the last stored command of m. A non-empty count replaces
// the stored one.
func (r *Runner) Repeat(count string, m mode.Mode) error {
	last, ok := r.last[m]
	if !ok {
		return command.Errorf("No command to repeat")
	}
	if count == "" {
		count = last.Count
	}
	return r.dispatch(count, last.Name, last.Args, m)
}

// Last returns the stored command of m.
func (r *Runner) Last(m mode.Mode) (LastCommand, bool) {
	last, ok := r.last[m]
	return last, ok
}

// SubstituteAlias replaces the first word of text when it is an alias in m.
// Only one level is applied.
func (r *Runner) SubstituteAlias(text string, m mode.Mode) string {
	name, rest := splitFirst(text)
	replacement, ok := r.aliases.Get(name, m)
	if !ok {
		return text
	}
	log.Debug(log.CatCommand, "Substituted alias", "alias", name, "text", replacement)
	if rest == "" {
		return replacement
	}
	return replacement + " " + rest
}

func splitFirst(text string) (string, string) {
	idx := strings.IndexAny(text, " \t")
	if idx < 0 {
		return text, ""
	}
	return text[:idx], strings.TrimLeft(text[idx:], " \t")
}

// ExpandWildcards replaces unescaped %m with the marked paths and unescaped %
// with the current path of m, every path shell-quoted. \% is kept as is for
// the argument splitter to unescape.
func (r *Runner) ExpandWildcards(text string, m mode.Mode) string {
	if !strings.Contains(text, "%") {
		return text
	}

	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && text[i+1] == '%':
			b.WriteString(`\%`)
			i++
		case c == '%' && i+1 < len(text) && text[i+1] == 'm':
			b.WriteString(r.markedPaths())
			i++
		case c == '%':
			b.WriteString(r.currentPath(m))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (r *Runner) markedPaths() string {
	if r.marks == nil {
		return ""
	}
	return shellquote.Join(r.marks.Marked()...)
}

func (r *Runner) currentPath(m mode.Mode) string {
	if r.paths == nil {
		return shellquote.Join("")
	}
	return shellquote.Join(r.paths.CurrentPath(m))
}

// Parse splits text into count, name and arguments. Leading digits of the
// first word are the count. Quotes and backslash escapes are honoured.
func Parse(text string) (count, name string, args []string, err error) {
	words, err := shellquote.Split(text)
	if err != nil {
		return "", "", nil, &ParseError{Text: text, Err: err}
	}
	if len(words) == 0 {
		return "", "", nil, nil
	}
	first := words[0]
	i := 0
	for i < len(first) && first[i] >= '0' && first[i] <= '9' {
		i++
	}
	return first[:i], first[i:], words[1:], nil
}

// reportedError marks an error that has already been logged.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func report(name string, err error) {
	var reported reportedError
	if errors.As(err, &reported) {
		return
	}
	var (
		warning *command.CommandWarning
		argErr  *command.ArgumentError
		cmdErr  *command.CommandError
	)
	switch {
	case errors.As(err, &warning):
		log.Warn(log.CatCommand, fmt.Sprintf("%s: %s", name, warning.Msg), "name", name)
	case errors.Is(err, command.ErrCommandNotFound):
		log.Error(log.CatCommand, err.Error(), "name", name)
	case errors.As(err, &argErr):
		log.Error(log.CatCommand, fmt.Sprintf("%s: %s", name, argErr.Error()), "name", name)
	case errors.As(err, &cmdErr):
		log.Error(log.CatCommand, fmt.Sprintf("%s: %s", name, cmdErr.Msg), "name", name)
	default:
		log.ErrorErr(log.CatCommand, fmt.Sprintf("%s: command failed", name), err, "name", name)
	}
}

func errorType(err error) string {
	var (
		parseErr *ParseError
		argErr   *command.ArgumentError
		cmdErr   *command.CommandError
		warning  *command.CommandWarning
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return "parse"
	case errors.Is(err, command.ErrCommandNotFound):
		return "not_found"
	case errors.As(err, &argErr):
		return "argument"
	case errors.As(err, &cmdErr):
		return "command"
	case errors.As(err, &warning):
		return "warning"
	}
	return "unknown"
}

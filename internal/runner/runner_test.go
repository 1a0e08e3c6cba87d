package runner

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/status"
)

type fakePaths map[mode.Mode]string

func (f fakePaths) CurrentPath(m mode.Mode) string { return f[m] }

type fakeMarks []string

func (f fakeMarks) Marked() []string { return f }

type fakeShell struct{ texts []string }

func (f *fakeShell) Run(text string) error {
	f.texts = append(f.texts, text)
	return nil
}

type recorded struct {
	calls []command.Call
}

func (r *recorded) handler(call command.Call) error {
	r.calls = append(r.calls, call)
	return nil
}

func (r *recorded) last(t *testing.T) command.Call {
	t.Helper()
	require.NotEmpty(t, r.calls)
	return r.calls[len(r.calls)-1]
}

type fixture struct {
	runner   *Runner
	commands *command.Registry
	status   *status.Registry
	shell    *fakeShell
	rec      *recorded
	updates  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		commands: command.NewRegistry(),
		status:   status.NewRegistry(),
		shell:    &fakeShell{},
		rec:      &recorded{},
	}
	f.status.OnUpdate(func() { f.updates++ })
	f.runner = New(Deps{
		Commands: f.commands,
		Status:   f.status,
		Paths:    fakePaths{mode.Image: "/img/current.jpg", mode.Library: "/img/dir"},
		Marks:    fakeMarks{"/img/a b.jpg", "/img/c.jpg"},
		Shell:    f.shell,
	})
	f.commands.MustRegister(f.runner.Commands()...)
	f.commands.MustRegister(
		command.New("brightness", mode.Image, f.rec.handler),
		command.New("goto", mode.Image, f.rec.handler),
		command.New("open", mode.Global, f.rec.handler),
		command.New("quit", mode.Global, f.rec.handler, command.NoStore()),
		command.New("fail", mode.Image, func(command.Call) error { return command.Errorf("it broke") }),
		command.New("warn", mode.Image, func(command.Call) error { return command.Warnf("careful") }),
		command.New("needs", mode.Image, func(c command.Call) error { return command.RequireArgs(c.Name, c.Args, 1, 1) }),
	)
	return f
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	t.Cleanup(restore)
	return &buf
}

func TestParse_Count(t *testing.T) {
	tests := []struct {
		text  string
		count string
		name  string
		args  []string
	}{
		{"3goto", "3", "goto", []string{}},
		{"goto 5", "", "goto", []string{"5"}},
		{"12next", "12", "next", []string{}},
		{`open "a b.jpg" c.jpg`, "", "open", []string{"a b.jpg", "c.jpg"}},
		{`open \%m`, "", "open", []string{"%m"}},
		{"42", "42", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			count, name, args, err := Parse(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.count, count)
			require.Equal(t, tt.name, name)
			require.ElementsMatch(t, tt.args, args)
		})
	}
}

func TestParse_Error(t *testing.T) {
	_, _, _, err := Parse("open 'unterminated")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestRun_CountPrefix(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.runner.Run("3goto", mode.Image))
	call := f.rec.last(t)
	require.Equal(t, "goto", call.Name)
	require.Equal(t, "3", call.Count)

	require.NoError(t, f.runner.RunWithCount("goto", 2, mode.Image))
	require.Equal(t, "2", f.rec.last(t).Count)

	require.NoError(t, f.runner.RunWithCount("3goto", 2, mode.Image))
	require.Equal(t, "23", f.rec.last(t).Count, "prepended count is concatenated")
}

func TestRun_EmptyIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Run("   ", mode.Image))
	require.Zero(t, f.updates)
	require.Empty(t, f.rec.calls)
}

func TestRun_ParseErrorSkipsStatusUpdate(t *testing.T) {
	buf := captureLog(t)
	f := newFixture(t)

	err := f.runner.Run("open 'unterminated", mode.Image)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Zero(t, f.updates)
	require.Contains(t, buf.String(), "[ERROR] [command]")
}

func TestRun_StatusUpdatedAfterEveryCommand(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.runner.Run("goto 1", mode.Image))
	require.Error(t, f.runner.Run("bogus", mode.Image))
	require.Error(t, f.runner.Run("fail", mode.Image))
	require.Equal(t, 3, f.updates)
}

func TestRun_ErrorsAreLoggedOnce(t *testing.T) {
	tests := []struct {
		text   string
		level  string
		msg    string
		target error
	}{
		{"bogus", "[ERROR]", "bogus: unknown command for mode image", command.ErrCommandNotFound},
		{"fail", "[ERROR]", "fail: it broke", nil},
		{"needs", "[ERROR]", "needs: expected at least 1 argument(s), got 0", nil},
		{"warn", "[WARN]", "warn: careful", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			buf := captureLog(t)
			f := newFixture(t)

			err := f.runner.Run(tt.text, mode.Image)
			require.Error(t, err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
			require.Contains(t, buf.String(), tt.level+" [command] "+tt.msg)
			require.Equal(t, 1, strings.Count(buf.String(), "[command] "+tt.text+":"))
		})
	}
}

func TestRun_SameNameResolvesPerMode(t *testing.T) {
	f := newFixture(t)
	var got []mode.Mode
	f.commands.MustRegister(
		command.New("accept", mode.Manipulate, func(c command.Call) error { got = append(got, c.Mode); return nil }),
		command.New("accept", mode.Library, func(c command.Call) error { got = append(got, c.Mode); return nil }),
	)

	require.NoError(t, f.runner.Run("accept", mode.Library))
	require.NoError(t, f.runner.Run("accept", mode.Manipulate))
	require.ErrorIs(t, f.runner.Run("accept", mode.Image), command.ErrCommandNotFound)
	require.Equal(t, []mode.Mode{mode.Library, mode.Manipulate}, got)
}

func TestRepeat(t *testing.T) {
	f := newFixture(t)

	err := f.runner.Run("repeat-command", mode.Image)
	var cmdErr *command.CommandError
	require.True(t, errors.As(err, &cmdErr))
	require.Equal(t, "No command to repeat", cmdErr.Msg)

	require.NoError(t, f.runner.Run("2brightness 10", mode.Image))
	require.NoError(t, f.runner.Run("repeat-command", mode.Image))
	call := f.rec.last(t)
	require.Equal(t, "brightness", call.Name)
	require.Equal(t, []string{"10"}, call.Args)
	require.Equal(t, "2", call.Count, "stored count is reused")

	require.NoError(t, f.runner.RunWithCount("repeat-command", 5, mode.Image))
	require.Equal(t, "5", f.rec.last(t).Count, "explicit count wins")

	last, ok := f.runner.Last(mode.Image)
	require.True(t, ok)
	require.Equal(t, "brightness", last.Name, "repeat-command never stores itself")
	require.Len(t, f.rec.calls, 3)
}

func TestRepeat_PerModeSlots(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Run("open /tmp", mode.Library))

	_, ok := f.runner.Last(mode.Image)
	require.False(t, ok)
	require.Error(t, f.runner.Run("repeat-command", mode.Image))

	require.NoError(t, f.runner.Run("quit", mode.Library))
	last, ok := f.runner.Last(mode.Library)
	require.True(t, ok)
	require.Equal(t, "open", last.Name, "non-stored commands keep the slot")
}

func TestExpandWildcards(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, "open /img/current.jpg", f.runner.ExpandWildcards("open %", mode.Image))
	require.Equal(t, "open /img/dir", f.runner.ExpandWildcards("open %", mode.Library))
	require.Equal(t, `open \%m`, f.runner.ExpandWildcards(`open \%m`, mode.Image))
	require.Equal(t, `open \%`, f.runner.ExpandWildcards(`open \%`, mode.Image))
	require.Equal(t, "no wildcards", f.runner.ExpandWildcards("no wildcards", mode.Image))

	expanded := f.runner.ExpandWildcards("open %m", mode.Image)
	_, name, args, err := Parse(expanded)
	require.NoError(t, err)
	require.Equal(t, "open", name)
	require.Equal(t, []string{"/img/a b.jpg", "/img/c.jpg"}, args)
}

func TestRun_EscapedWildcardReachesCommandUnescaped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Run(`open \%m`, mode.Image))
	require.Equal(t, []string{"%m"}, f.rec.last(t).Args)
}

func TestRun_ExternalCommands(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Run("!rm %", mode.Image))
	require.Equal(t, []string{"!rm /img/current.jpg"}, f.shell.texts)
	require.Empty(t, f.rec.calls)
	require.Zero(t, f.updates)
}

func TestRun_AliasFirstWordOnly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Aliases().Set("g", "goto", mode.Image))

	require.NoError(t, f.runner.Run("g 4", mode.Image))
	call := f.rec.last(t)
	require.Equal(t, "goto", call.Name)
	require.Equal(t, []string{"4"}, call.Args)

	require.NoError(t, f.runner.Run("open g", mode.Image))
	require.Equal(t, []string{"g"}, f.rec.last(t).Args)

	// Default global alias.
	require.NoError(t, f.runner.Run("q", mode.Thumbnail))
	require.Equal(t, "quit", f.rec.last(t).Name)
	require.ErrorIs(t, f.runner.Run("q", mode.Manipulate), command.ErrCommandNotFound)
}

func TestAliasCommands(t *testing.T) {
	f := newFixture(t)
	changes := 0
	f.runner.Aliases().OnChange(func() { changes++ })

	require.NoError(t, f.runner.Run("alias --mode image bright brightness 20", mode.Image))
	require.NoError(t, f.runner.Run("bright", mode.Image))
	require.Equal(t, []string{"20"}, f.rec.last(t).Args)

	err := f.runner.Run("alias goto open", mode.Image)
	var cmdErr *command.CommandError
	require.True(t, errors.As(err, &cmdErr))

	require.NoError(t, f.runner.Run("unalias --mode image bright", mode.Image))
	require.ErrorIs(t, f.runner.Run("bright", mode.Image), command.ErrCommandNotFound)

	var warning *command.CommandWarning
	require.True(t, errors.As(f.runner.Run("unalias bright", mode.Image), &warning))
	require.Equal(t, 2, changes)
}

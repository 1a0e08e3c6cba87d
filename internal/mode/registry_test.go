package mode

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeSurface struct {
	visible   bool
	enterable bool
	shown     int
	focused   int
}

func newFakeSurface() *fakeSurface { return &fakeSurface{enterable: true} }

func (s *fakeSurface) Show()           { s.shown++; s.visible = true }
func (s *fakeSurface) Focus()          { s.focused++ }
func (s *fakeSurface) Visible() bool   { return s.visible }
func (s *fakeSurface) Enterable() bool { return s.enterable }

func current(t *testing.T, r *Registry) Mode {
	t.Helper()
	m, err := r.Current()
	require.NoError(t, err)
	return m
}

func TestNewRegistry_Defaults(t *testing.T) {
	r := NewRegistry()

	require.Equal(t, Image, current(t, r))
	require.Equal(t, Library, r.Last(Image))
	require.Equal(t, Library, r.LastFallback(Image))
	for _, m := range []Mode{Library, Thumbnail, Command, Manipulate} {
		require.Equal(t, Image, r.Last(m), m.String())
		require.Equal(t, Image, r.LastFallback(m), m.String())
	}
}

func TestByName(t *testing.T) {
	m, err := ByName("LIBRARY")
	require.NoError(t, err)
	require.Equal(t, Library, m)

	m, err = ByName("global")
	require.NoError(t, err)
	require.Equal(t, Global, m)

	_, err = ByName("insert")
	require.ErrorIs(t, err, ErrModeNotFound)
}

func TestEnter_GlobalIsRejected(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Enter(Global), ErrModeNotFound)
	require.ErrorIs(t, r.Leave(Global), ErrModeNotFound)
	require.ErrorIs(t, r.Toggle(Mode(42)), ErrModeNotFound)
	require.Equal(t, Image, current(t, r))
}

func TestEnter_ShowsAndFocusesSurface(t *testing.T) {
	r := NewRegistry()
	s := newFakeSurface()
	require.NoError(t, r.SetSurface(Library, s))

	require.NoError(t, r.Enter(Library))
	require.Equal(t, 1, s.shown)
	require.Equal(t, 1, s.focused)

	require.NoError(t, r.Enter(Library))
	require.Equal(t, 1, s.shown, "entering the active mode is a no-op")
}

func TestReturnSemantics(t *testing.T) {
	tests := []struct {
		name string
		from Mode
	}{
		{"from image", Image},
		{"from library", Library},
		{"from thumbnail", Thumbnail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, r.Enter(tt.from))

			require.NoError(t, r.Enter(Command))
			require.NoError(t, r.Leave(Command))

			require.Equal(t, tt.from, current(t, r))
			require.Equal(t, Image, r.Last(Command), "last resets to fallback after leave")
		})
	}
}

func TestReturnSemantics_NestedOverlays(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Enter(Library))
	require.NoError(t, r.Enter(Image))
	require.Equal(t, Library, r.Last(Image))

	require.NoError(t, r.Enter(Manipulate))
	require.NoError(t, r.Enter(Command))
	require.Equal(t, Manipulate, r.Last(Command))

	require.NoError(t, r.Leave(Command))
	require.Equal(t, Manipulate, current(t, r))

	require.NoError(t, r.Leave(Manipulate))
	require.Equal(t, Image, current(t, r))
	require.Equal(t, Library, r.Last(Image), "overlays never become a return target")
}

func TestFilter_OverlaysNeverBecomeLast(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Enter(Manipulate))
	require.NoError(t, r.Enter(Library))
	require.Equal(t, Image, r.Last(Library))

	require.NoError(t, r.Enter(Command))
	require.NoError(t, r.Enter(Thumbnail))
	require.Equal(t, Image, r.Last(Thumbnail))
}

func TestLeave_StaleLastFallsBack(t *testing.T) {
	r := NewRegistry()
	lib := newFakeSurface()
	require.NoError(t, r.SetSurface(Library, lib))

	require.NoError(t, r.Enter(Library))
	require.NoError(t, r.Enter(Command))
	require.Equal(t, Library, r.Last(Command))

	lib.enterable = false
	require.NoError(t, r.Leave(Command))
	require.Equal(t, Image, current(t, r))
}

func TestLeave_StaleFallbackUsesImage(t *testing.T) {
	r := NewRegistry()
	lib := newFakeSurface()
	require.NoError(t, r.SetSurface(Library, lib))
	thumb := newFakeSurface()
	require.NoError(t, r.SetSurface(Thumbnail, thumb))

	require.NoError(t, r.Enter(Library))
	require.NoError(t, r.Enter(Thumbnail))
	require.NoError(t, r.Enter(Image))
	require.Equal(t, Thumbnail, r.Last(Image))

	thumb.enterable = false
	lib.enterable = false
	require.NoError(t, r.Leave(Image))
	require.Equal(t, Image, current(t, r))
}

func TestToggle_UsesSurfaceVisibility(t *testing.T) {
	r := NewRegistry()
	lib := newFakeSurface()
	require.NoError(t, r.SetSurface(Library, lib))

	require.NoError(t, r.Toggle(Library))
	require.Equal(t, Library, current(t, r))

	require.NoError(t, r.Toggle(Library))
	require.Equal(t, Image, current(t, r))

	// Without a surface, visibility follows the active flag.
	require.NoError(t, r.Toggle(Thumbnail))
	require.Equal(t, Thumbnail, current(t, r))
	require.NoError(t, r.Toggle(Thumbnail))
	require.Equal(t, Image, current(t, r))
}

func TestHooks(t *testing.T) {
	r := NewRegistry()

	var entered, left []Mode
	r.OnEntered(func(m Mode) { entered = append(entered, m) })
	r.OnLeft(func(m Mode) { left = append(left, m) })

	require.NoError(t, r.Enter(Command))
	require.NoError(t, r.Leave(Command))

	require.Equal(t, []Mode{Command, Image}, entered)
	require.Equal(t, []Mode{Command}, left)
}

func TestExclusivity_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		surfaces := map[Mode]*fakeSurface{}
		for _, m := range All() {
			if rapid.Bool().Draw(t, "surface-"+m.String()) {
				s := newFakeSurface()
				surfaces[m] = s
				_ = r.SetSurface(m, s)
			}
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			m := rapid.SampledFrom(All()).Draw(t, "mode")
			if s, ok := surfaces[m]; ok && rapid.IntRange(0, 4).Draw(t, "stale") == 0 {
				s.enterable = !s.enterable
			}
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				_ = r.Enter(m)
			case 1:
				_ = r.Leave(m)
			default:
				_ = r.Toggle(m)
			}

			active := 0
			for _, c := range All() {
				if r.Active(c) {
					active++
				}
			}
			if active != 1 {
				t.Fatalf("expected exactly one active mode, got %d", active)
			}
			for _, c := range []Mode{Image, Library, Thumbnail, Manipulate} {
				if last := r.Last(c); last == Command || last == Manipulate {
					t.Fatalf("%s returns to overlay %s", c, last)
				}
			}
		}
	})
}

package mode

import (
	"fmt"

	"github.com/zjrosen/vimg/internal/log"
)

// Surface is the presentation attached to a mode.
type Surface interface {
	Show()
	Focus()
	// Visible reports whether the surface is currently shown.
	Visible() bool
	// Enterable reports whether the mode can currently be returned to.
	Enterable() bool
}

type state struct {
	active       bool
	last         Mode
	lastFallback Mode
	surface      Surface
}

// Registry tracks the active mode and each mode's return target.
// It is owned by the update loop and is not safe for concurrent use.
type Registry struct {
	states  [modeCount]state
	entered []func(Mode)
	left    []func(Mode)
}

// NewRegistry creates a registry with image mode active.
// Image returns to library; every other mode returns to image.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, m := range All() {
		r.states[m].last = Image
		r.states[m].lastFallback = Image
	}
	r.states[Image].last = Library
	r.states[Image].lastFallback = Library
	r.states[Image].active = true
	return r
}

// OnEntered registers a hook run synchronously after a mode is entered.
func (r *Registry) OnEntered(fn func(Mode)) { r.entered = append(r.entered, fn) }

// OnLeft registers a hook run synchronously after a mode is left.
func (r *Registry) OnLeft(fn func(Mode)) { r.left = append(r.left, fn) }

// SetSurface attaches s to m.
func (r *Registry) SetSurface(m Mode, s Surface) error {
	if !m.Concrete() {
		return fmt.Errorf("%w: %s", ErrModeNotFound, m)
	}
	r.states[m].surface = s
	return nil
}

// Current returns the active mode.
func (r *Registry) Current() (Mode, error) {
	for _, m := range All() {
		if r.states[m].active {
			return m, nil
		}
	}
	return Global, ErrNoActiveMode
}

// Active reports whether m is the active mode.
func (r *Registry) Active(m Mode) bool {
	return m.Concrete() && r.states[m].active
}

// Last returns the mode m returns to when left.
func (r *Registry) Last(m Mode) Mode {
	if !m.Concrete() {
		return Global
	}
	return r.states[m].last
}

// LastFallback returns the permanent default of Last(m).
func (r *Registry) LastFallback(m Mode) Mode {
	if !m.Concrete() {
		return Global
	}
	return r.states[m].lastFallback
}

// Enter makes m the active mode. Entering the active mode does nothing.
func (r *Registry) Enter(m Mode) error {
	if !m.Concrete() {
		return fmt.Errorf("%w: cannot enter %s", ErrModeNotFound, m)
	}
	if r.states[m].active {
		return nil
	}

	if current, err := r.Current(); err == nil {
		r.states[current].active = false
		r.setLast(m, current)
	}
	r.states[m].active = true
	log.Debug(log.CatMode, "Entered mode", "mode", m, "last", r.states[m].last)

	if s := r.states[m].surface; s != nil {
		s.Show()
		s.Focus()
	}
	for _, fn := range r.entered {
		fn(m)
	}
	return nil
}

// Leave enters the mode m returns to and resets m's return target.
// A stale target falls back to m's permanent default and then to image.
func (r *Registry) Leave(m Mode) error {
	if !m.Concrete() {
		return fmt.Errorf("%w: cannot leave %s", ErrModeNotFound, m)
	}

	target := r.states[m].last
	if !r.usable(target, m) {
		log.Debug(log.CatMode, "Stale return target", "mode", m, "last", target)
		target = r.states[m].lastFallback
		if !r.usable(target, m) {
			target = Image
		}
	}
	if err := r.Enter(target); err != nil {
		return err
	}

	log.Debug(log.CatMode, "Left mode", "mode", m, "target", target)
	for _, fn := range r.left {
		fn(m)
	}
	r.states[m].last = r.states[m].lastFallback
	return nil
}

// Toggle leaves m if its surface is visible and enters it otherwise.
// A mode without a surface counts as visible while active.
func (r *Registry) Toggle(m Mode) error {
	if !m.Concrete() {
		return fmt.Errorf("%w: cannot toggle %s", ErrModeNotFound, m)
	}
	if r.visible(m) {
		return r.Leave(m)
	}
	return r.Enter(m)
}

func (r *Registry) visible(m Mode) bool {
	if s := r.states[m].surface; s != nil {
		return s.Visible()
	}
	return r.states[m].active
}

func (r *Registry) usable(target, leaving Mode) bool {
	if !target.Concrete() || target == leaving {
		return false
	}
	if s := r.states[target].surface; s != nil {
		return s.Enterable()
	}
	return true
}

// setLast records last as m's return target unless m's filter rejects it.
// Command and manipulate are overlays and never a return target for the
// ordinary modes; command mode only refuses itself.
func (r *Registry) setLast(m, last Mode) {
	switch m {
	case Command:
		if last == Command {
			return
		}
	default:
		if last == Command || last == Manipulate {
			return
		}
	}
	r.states[m].last = last
}

// Package surface tracks whether the widget of a mode is shown and focused.
package surface

// Surface is the show/focus state of one mode's widget.
type Surface struct {
	name      string
	visible   bool
	focused   bool
	enterable func() bool
	onShow    []func()
	onHide    []func()
}

// Option configures a Surface.
type Option func(*Surface)

// WithEnterable makes fn decide whether the mode can be returned to.
func WithEnterable(fn func() bool) Option {
	return func(s *Surface) { s.enterable = fn }
}

// New creates a hidden surface.
func New(name string, opts ...Option) *Surface {
	s := &Surface{name: name}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// OnShow registers a hook run when the surface becomes visible.
func (s *Surface) OnShow(fn func()) { s.onShow = append(s.onShow, fn) }

// OnHide registers a hook run when the surface is hidden.
func (s *Surface) OnHide(fn func()) { s.onHide = append(s.onHide, fn) }

// Show makes the surface visible.
func (s *Surface) Show() {
	if s.visible {
		return
	}
	s.visible = true
	for _, fn := range s.onShow {
		fn()
	}
}

// Hide hides and blurs the surface.
func (s *Surface) Hide() {
	s.focused = false
	if !s.visible {
		return
	}
	s.visible = false
	for _, fn := range s.onHide {
		fn()
	}
}

// Focus gives the surface the keyboard focus.
func (s *Surface) Focus() { s.focused = true }

// Blur takes the focus away.
func (s *Surface) Blur() { s.focused = false }

// Visible reports whether the surface is shown.
func (s *Surface) Visible() bool { return s.visible }

// Focused reports whether the surface has the focus.
func (s *Surface) Focused() bool { return s.focused }

// Enterable reports whether the mode can be entered again; true without a
// WithEnterable option.
func (s *Surface) Enterable() bool {
	if s.enterable == nil {
		return true
	}
	return s.enterable()
}

// Package manipulate edits brightness and contrast of the current image on a
// worker pool. Edits supersede each other: only the newest one is applied.
package manipulate

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/loop"
	"github.com/zjrosen/vimg/internal/worker"
)

// Value bounds.
const (
	MinValue = -127
	MaxValue = 127
)

// DefaultDebounce is how long a worker waits for newer edits before computing.
const DefaultDebounce = 300 * time.Millisecond

// Manipulation names.
const (
	Brightness = "brightness"
	Contrast   = "contrast"
)

// Values holds one value per manipulation.
type Values struct {
	Brightness int
	Contrast   int
}

// Changed reports whether any value differs from zero.
func (v Values) Changed() bool { return v.Brightness != 0 || v.Contrast != 0 }

// Result is a computed manipulation delivered to the loop.
type Result struct {
	Generation uint64
	Values     Values
	Image      image.Image
	Err        error
}

// Config configures a Manipulator.
type Config struct {
	Pool     *worker.Pool // required
	Loop     *loop.Loop   // required
	Engine   Engine       // defaults to ImagingEngine
	Debounce time.Duration
}

// Manipulator holds the edit state. Everything except the worker body runs on
// the update loop.
type Manipulator struct {
	pool     *worker.Pool
	loop     *loop.Loop
	engine   Engine
	debounce time.Duration

	source     image.Image
	values     Values
	current    string
	result     image.Image
	accepted   image.Image
	generation atomic.Uint64
	pending    atomic.Uint64 // accepted generation still computing, 0 when none
	requested  uint64        // generation of the last dispatch
	applied    uint64        // generation of result
	wake       chan struct{} // closed to end the debounce wait of the newest worker

	onApplied []func(Result)
}

// New creates a manipulator. A zero Debounce means DefaultDebounce; a
// negative one disables the wait.
func New(cfg Config) *Manipulator {
	if cfg.Engine == nil {
		cfg.Engine = ImagingEngine{}
	}
	switch {
	case cfg.Debounce == 0:
		cfg.Debounce = DefaultDebounce
	case cfg.Debounce < 0:
		cfg.Debounce = 0
	}
	return &Manipulator{
		pool:     cfg.Pool,
		loop:     cfg.Loop,
		engine:   cfg.Engine,
		debounce: cfg.Debounce,
		current:  Brightness,
	}
}

// OnApplied registers a hook run on the loop whenever a result is applied.
func (m *Manipulator) OnApplied(fn func(Result)) { m.onApplied = append(m.onApplied, fn) }

// SetSource sets the unmanipulated image and resets all values. A pending
// accept of the previous image is abandoned.
func (m *Manipulator) SetSource(img image.Image) {
	m.source = img
	m.pending.Store(0)
	m.Reset()
}

// Source returns the unmanipulated image.
func (m *Manipulator) Source() image.Image { return m.source }

// Values returns the current values.
func (m *Manipulator) Values() Values { return m.values }

// Current returns the focused manipulation.
func (m *Manipulator) Current() string { return m.current }

// Result returns the latest applied image, nil before any edit completes.
func (m *Manipulator) Result() image.Image { return m.result }

// Accepted returns the image kept by the last Accept. It is nil while that
// accept is still computing.
func (m *Manipulator) Accepted() image.Image { return m.accepted }

// Pending reports whether an accepted edit has not been computed yet.
func (m *Manipulator) Pending() bool { return m.pending.Load() != 0 }

// Generation returns the number of edits dispatched so far.
func (m *Manipulator) Generation() uint64 { return m.generation.Load() }

// Processing reports whether an edit is waiting or being computed.
func (m *Manipulator) Processing() bool { return m.pool.Busy() }

// Focus makes name the manipulation that Set, Increase and Decrease change.
func (m *Manipulator) Focus(name string) error {
	switch name {
	case Brightness, Contrast:
		m.current = name
		return nil
	}
	return fmt.Errorf("unknown manipulation %q", name)
}

// Set focuses name and changes it to value, clamped to [-127, 127].
func (m *Manipulator) Set(name string, value int) error {
	if err := m.Focus(name); err != nil {
		return err
	}
	value = clamp(value)
	switch name {
	case Brightness:
		m.values.Brightness = value
	case Contrast:
		m.values.Contrast = value
	}
	return m.dispatch()
}

// SetCurrent changes the focused manipulation to value.
func (m *Manipulator) SetCurrent(value int) error { return m.Set(m.current, value) }

// Increase adds delta to the focused manipulation.
func (m *Manipulator) Increase(delta int) error { return m.Set(m.current, m.value(m.current)+delta) }

// Decrease subtracts delta from the focused manipulation.
func (m *Manipulator) Decrease(delta int) error { return m.Set(m.current, m.value(m.current)-delta) }

func (m *Manipulator) value(name string) int {
	if name == Contrast {
		return m.values.Contrast
	}
	return m.values.Brightness
}

// Accept keeps the result of the newest edit, or the source when nothing was
// edited. If that edit is still computing, its result becomes the accepted
// image once it arrives, even after Reset.
func (m *Manipulator) Accept() image.Image {
	switch {
	case m.requested != 0 && m.requested != m.applied:
		m.pending.Store(m.requested)
		m.accepted = nil
		m.kick()
		log.Debug(log.CatManipulate, "Accepted pending manipulation", "generation", m.requested)
		return nil
	case m.result != nil:
		m.accepted = m.result
	default:
		m.accepted = m.source
	}
	log.Debug(log.CatManipulate, "Accepted manipulation", "brightness", m.values.Brightness, "contrast", m.values.Contrast)
	return m.accepted
}

// Reset zeroes every value and drops in-flight and applied results, except
// an accepted edit that is still computing.
func (m *Manipulator) Reset() {
	m.generation.Add(1)
	m.kick()
	m.values = Values{}
	m.result = nil
	m.requested = 0
	m.applied = 0
	m.current = Brightness
}

// kick ends the debounce wait of the newest worker.
func (m *Manipulator) kick() {
	if m.wake != nil {
		close(m.wake)
		m.wake = nil
	}
}

func clamp(v int) int {
	return max(MinValue, min(MaxValue, v))
}

// dispatch starts a worker for the current values. Older workers notice the
// generation moved on and drop their work.
func (m *Manipulator) dispatch() error {
	if m.source == nil {
		return fmt.Errorf("no image to manipulate")
	}
	gen := m.generation.Add(1)
	m.kick()
	wake := make(chan struct{})
	m.wake = wake
	src, values := m.source, m.values
	log.Debug(log.CatManipulate, "Dispatching manipulation", "generation", gen,
		"brightness", values.Brightness, "contrast", values.Contrast)

	wanted := func() bool {
		return m.generation.Load() == gen || m.pending.Load() == gen
	}
	err := m.pool.Submit(func(ctx context.Context) {
		// Workers queued behind a slower one may already be stale.
		if !wanted() {
			return
		}
		if m.debounce > 0 {
			timer := time.NewTimer(m.debounce)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-wake:
			case <-ctx.Done():
				return
			}
		}
		if !wanted() {
			return
		}
		out, err := m.engine.Apply(src, values)
		if !wanted() {
			return
		}
		res := Result{Generation: gen, Values: values, Image: out, Err: err}
		m.loop.Post(func() { m.apply(res) })
	})
	if err != nil {
		return err
	}
	m.requested = gen
	return nil
}

// apply runs on the loop.
func (m *Manipulator) apply(res Result) {
	accepted := res.Generation == m.pending.Load()
	current := res.Generation == m.generation.Load()
	if !accepted && !current {
		log.Debug(log.CatManipulate, "Dropping stale manipulation", "generation", res.Generation)
		return
	}
	if accepted {
		m.pending.Store(0)
	}
	if current {
		m.applied = res.Generation
	}
	if res.Err != nil {
		log.ErrorErr(log.CatManipulate, "Manipulation failed", res.Err, "generation", res.Generation)
		return
	}
	if accepted {
		m.accepted = res.Image
		log.Debug(log.CatManipulate, "Pending manipulation accepted", "generation", res.Generation)
	}
	if current {
		m.result = res.Image
	}
	for _, fn := range m.onApplied {
		fn(res)
	}
}

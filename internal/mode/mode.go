// Package mode holds the closed set of interaction modes and the registry
// tracking which one is active and where each returns to when left.
package mode

import (
	"errors"
	"fmt"
	"strings"
)

// Mode identifies an interaction mode.
type Mode int

const (
	// Global is the virtual group standing for image, library and thumbnail.
	// It is never active.
	Global Mode = iota
	Image
	Library
	Thumbnail
	Command
	Manipulate

	modeCount
)

var names = [modeCount]string{
	Global:     "global",
	Image:      "image",
	Library:    "library",
	Thumbnail:  "thumbnail",
	Command:    "command",
	Manipulate: "manipulate",
}

// ErrModeNotFound is returned for unknown mode names or modes that cannot be entered.
var ErrModeNotFound = errors.New("mode not found")

// ErrNoActiveMode is returned by Current when no mode is active.
var ErrNoActiveMode = errors.New("no active mode")

func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return names[m]
}

// Valid reports whether m is one of the defined modes, Global included.
func (m Mode) Valid() bool { return m >= Global && m < modeCount }

// Concrete reports whether m can be active.
func (m Mode) Concrete() bool { return m > Global && m < modeCount }

// Expand returns the concrete modes m stands for.
func (m Mode) Expand() []Mode {
	if m == Global {
		return GlobalModes()
	}
	return []Mode{m}
}

// All returns every concrete mode in declaration order.
func All() []Mode {
	return []Mode{Image, Library, Thumbnail, Command, Manipulate}
}

// GlobalModes returns the modes the Global group expands to.
func GlobalModes() []Mode {
	return []Mode{Image, Library, Thumbnail}
}

// ByName looks a mode up by name, case-insensitively. "global" is accepted.
func ByName(name string) (Mode, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for m, n := range names {
		if n == lower {
			return Mode(m), nil
		}
	}
	return Global, fmt.Errorf("%w: %q", ErrModeNotFound, name)
}

// Names returns the names of every mode, Global first.
func Names() []string {
	return append([]string(nil), names[:]...)
}

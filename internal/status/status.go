// Package status substitutes {name} tokens in status text with values
// produced by registered modules, and runs the update and clear hooks that
// tell the status bar to re-render.
package status

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zjrosen/vimg/internal/log"
)

// ErrInvalidModuleName matches every InvalidModuleNameError.
var ErrInvalidModuleName = errors.New("invalid status module name")

// InvalidModuleNameError reports a token not wrapped in braces.
type InvalidModuleNameError struct {
	Name string
}

func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid name %q for status module, must be of the form {name}", e.Name)
}

// Is allows errors.Is(err, ErrInvalidModuleName).
func (e *InvalidModuleNameError) Is(target error) bool {
	return target == ErrInvalidModuleName
}

var tokenPattern = regexp.MustCompile(`\{.*?\}`)

type module struct {
	resolve func() func() string
	produce func() string
}

func (m *module) text() string {
	if m.produce == nil && m.resolve != nil {
		m.produce = m.resolve()
		m.resolve = nil
	}
	if m.produce == nil {
		return ""
	}
	return m.produce()
}

// Registry maps tokens to producers.
// It is owned by the update loop and is not safe for concurrent use.
type Registry struct {
	modules  map[string]*module
	warned   map[string]struct{}
	onUpdate []func()
	onClear  []func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*module),
		warned:  make(map[string]struct{}),
	}
}

func validToken(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, "{") && strings.HasSuffix(token, "}")
}

// Register binds token to fn. Registering a token again replaces it.
func (r *Registry) Register(token string, fn func() string) error {
	if fn == nil {
		return fmt.Errorf("status module %s: nil producer", token)
	}
	return r.add(token, &module{produce: fn})
}

// RegisterLazy binds token to the producer returned by resolve. resolve runs
// once, on first evaluation, and its result is reused afterwards.
func (r *Registry) RegisterLazy(token string, resolve func() func() string) error {
	if resolve == nil {
		return fmt.Errorf("status module %s: nil resolver", token)
	}
	return r.add(token, &module{resolve: resolve})
}

func (r *Registry) add(token string, m *module) error {
	if !validToken(token) {
		return &InvalidModuleNameError{Name: token}
	}
	if _, ok := r.modules[token]; ok {
		log.Debug(log.CatStatus, "Replacing status module", "token", token)
	}
	r.modules[token] = m
	delete(r.warned, token)
	return nil
}

// MustRegister registers fn and panics if token is invalid.
func (r *Registry) MustRegister(token string, fn func() string) {
	if err := r.Register(token, fn); err != nil {
		panic(err)
	}
}

// Evaluate replaces every {token} in text with its module's output.
// Each distinct token is produced once per call. Unknown tokens become empty
// and are warned about the first time they are seen.
func (r *Registry) Evaluate(text string) string {
	seen := make(map[string]string)
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		if out, ok := seen[token]; ok {
			return out
		}
		out := r.produce(token)
		seen[token] = out
		return out
	})
}

func (r *Registry) produce(token string) string {
	if m, ok := r.modules[token]; ok {
		return m.text()
	}
	if _, ok := r.warned[token]; !ok {
		r.warned[token] = struct{}{}
		log.Warn(log.CatStatus, "Disabling invalid module", "token", token)
	}
	return ""
}

// Has reports whether token is registered.
func (r *Registry) Has(token string) bool {
	_, ok := r.modules[token]
	return ok
}

// Modules returns the registered tokens sorted.
func (r *Registry) Modules() []string {
	tokens := make([]string, 0, len(r.modules))
	for token := range r.modules {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// OnUpdate registers a hook run synchronously by Update.
func (r *Registry) OnUpdate(fn func()) { r.onUpdate = append(r.onUpdate, fn) }

// OnClear registers a hook run synchronously by Clear.
func (r *Registry) OnClear(fn func()) { r.onClear = append(r.onClear, fn) }

// Update signals that status text should be re-evaluated.
func (r *Registry) Update() {
	for _, fn := range r.onUpdate {
		fn()
	}
}

// Clear signals that temporary status messages should be removed.
func (r *Registry) Clear() {
	for _, fn := range r.onClear {
		fn()
	}
}

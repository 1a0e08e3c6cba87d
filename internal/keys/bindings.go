package keys

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
)

// Token converts a bubbletea key string to its binding notation: printable
// single characters stay as they are, named keys are wrapped in angle
// brackets ("esc" becomes "<esc>", "ctrl+p" becomes "<ctrl+p>").
func Token(keyString string) string {
	if keyString == " " {
		return "<space>"
	}
	if utf8.RuneCountInString(keyString) == 1 {
		return keyString
	}
	return "<" + keyString + ">"
}

// Bindings maps key sequences to command text per mode. Bindings of
// mode.Global apply to image, library and thumbnail mode unless the mode
// binds the same sequence itself.
type Bindings struct {
	modes map[mode.Mode]map[string]string
}

// NewBindings creates empty bindings.
func NewBindings() *Bindings {
	b := &Bindings{modes: make(map[mode.Mode]map[string]string)}
	for _, m := range append([]mode.Mode{mode.Global}, mode.All()...) {
		b.modes[m] = make(map[string]string)
	}
	return b
}

// Defaults returns the default bindings.
func Defaults() *Bindings {
	b := NewBindings()
	for name, seqs := range defaultBindings {
		m, _ := mode.ByName(name)
		for seq, cmd := range seqs {
			b.Bind(m, seq, cmd)
		}
	}
	return b
}

var defaultBindings = map[string]map[string]string{
	"global": {
		"q":        "quit",
		":":        "command",
		"o":        "command --text='open '",
		".":        "repeat-command",
		"n":        "next",
		"p":        "prev",
		"m":        "mark %",
		"gi":       "enter image",
		"gl":       "enter library",
		"gt":       "enter thumbnail",
		"<ctrl+l>": "toggle library",
		"<ctrl+t>": "toggle thumbnail",
	},
	"image": {
		"gg": "goto 1",
		"G":  "goto -1",
		"M":  "manipulate",
	},
	"library": {
		"j":       "scroll down",
		"k":       "scroll up",
		"h":       "up",
		"l":       "open-selected",
		"<enter>": "open-selected",
		"gg":      "goto 1",
		"G":       "goto -1",
	},
	"thumbnail": {
		"h":       "scroll left",
		"j":       "scroll down",
		"k":       "scroll up",
		"l":       "scroll right",
		"+":       "zoom in",
		"-":       "zoom out",
		"<enter>": "open-selected",
		"gg":      "goto 1",
		"G":       "goto -1",
	},
	"manipulate": {
		"b":       "brightness",
		"c":       "contrast",
		"k":       "increase 1",
		"j":       "decrease 1",
		"K":       "increase 10",
		"J":       "decrease 10",
		"<enter>": "accept",
		"<esc>":   "discard",
	},
	"command": {
		"<esc>":    "leave-commandline",
		"<ctrl+p>": "history next",
		"<ctrl+n>": "history prev",
		"<up>":     "history-substr-search next",
		"<down>":   "history-substr-search prev",
	},
}

// Bind maps seq to cmd in m, replacing an existing binding.
func (b *Bindings) Bind(m mode.Mode, seq, cmd string) {
	if seq == "" {
		return
	}
	b.modes[m][seq] = cmd
}

// Unbind removes seq from m.
func (b *Bindings) Unbind(m mode.Mode, seq string) {
	delete(b.modes[m], seq)
}

// Load merges bindings keyed by mode name, as read from the config file.
func (b *Bindings) Load(byMode map[string]map[string]string) error {
	for name, seqs := range byMode {
		m, err := mode.ByName(name)
		if err != nil {
			return fmt.Errorf("keybindings: %w", err)
		}
		for seq, cmd := range seqs {
			b.Bind(m, seq, cmd)
		}
	}
	return nil
}

// Get returns the command bound to seq in m.
func (b *Bindings) Get(m mode.Mode, seq string) (string, bool) {
	if cmd, ok := b.modes[m][seq]; ok {
		return cmd, true
	}
	if inGlobal(m) {
		cmd, ok := b.modes[mode.Global][seq]
		return cmd, ok
	}
	return "", false
}

// HasPrefix reports whether some sequence of m is longer than and starts with prefix.
func (b *Bindings) HasPrefix(m mode.Mode, prefix string) bool {
	check := func(seqs map[string]string) bool {
		for seq := range seqs {
			if len(seq) > len(prefix) && strings.HasPrefix(seq, prefix) {
				return true
			}
		}
		return false
	}
	if check(b.modes[m]) {
		return true
	}
	return inGlobal(m) && check(b.modes[mode.Global])
}

// Sequences returns the effective bindings of m sorted by sequence.
func (b *Bindings) Sequences(m mode.Mode) []Binding {
	merged := make(map[string]string)
	if inGlobal(m) {
		maps.Copy(merged, b.modes[mode.Global])
	}
	maps.Copy(merged, b.modes[m])
	out := make([]Binding, 0, len(merged))
	for _, seq := range slices.Sorted(maps.Keys(merged)) {
		out = append(out, Binding{Keys: seq, Command: merged[seq]})
	}
	return out
}

// Binding is one key sequence and its command.
type Binding struct {
	Keys    string
	Command string
}

func inGlobal(m mode.Mode) bool {
	return m != mode.Global && slices.Contains(mode.GlobalModes(), m)
}

// Result is the outcome of one key press.
type Result struct {
	Command string // bound command text when a sequence completed
	Count   string // count typed before the sequence
	Pending bool   // more keys are needed
}

// Matched reports whether a sequence completed.
func (r Result) Matched() bool { return r.Command != "" }

// Handler turns key presses into commands, collecting a count prefix and
// partial sequences.
type Handler struct {
	bindings *Bindings
	count    string
	pending  string
	onChange []func()
}

// NewHandler creates a handler for bindings.
func NewHandler(bindings *Bindings) *Handler {
	return &Handler{bindings: bindings}
}

// Bindings returns the bindings the handler resolves against.
func (h *Handler) Bindings() *Bindings { return h.bindings }

// OnChange registers a hook run when the pending keys change.
func (h *Handler) OnChange(fn func()) { h.onChange = append(h.onChange, fn) }

// Press handles the bubbletea key string keyString in mode m.
func (h *Handler) Press(m mode.Mode, keyString string) Result {
	token := Token(keyString)

	if h.pending == "" && isDigit(token) && (token != "0" || h.count != "") {
		if _, bound := h.bindings.Get(m, h.pending+token); !bound || h.count != "" {
			h.count += token
			h.changed()
			return Result{Pending: true}
		}
	}

	seq := h.pending + token
	if cmd, ok := h.bindings.Get(m, seq); ok {
		result := Result{Command: cmd, Count: h.count}
		log.Debug(log.CatKeys, "Key sequence matched", "mode", m, "keys", seq, "command", cmd, "count", h.count)
		h.Clear()
		return result
	}
	if h.bindings.HasPrefix(m, seq) {
		h.pending = seq
		h.changed()
		return Result{Pending: true}
	}
	log.Debug(log.CatKeys, "No binding", "mode", m, "keys", seq)
	h.Clear()
	return Result{}
}

// Pending returns the typed count and partial sequence.
func (h *Handler) Pending() string { return h.count + h.pending }

// Clear drops the count and partial sequence.
func (h *Handler) Clear() {
	if h.count == "" && h.pending == "" {
		return
	}
	h.count, h.pending = "", ""
	h.changed()
}

func (h *Handler) changed() {
	for _, fn := range h.onChange {
		fn()
	}
}

func isDigit(token string) bool {
	return len(token) == 1 && token[0] >= '0' && token[0] <= '9'
}

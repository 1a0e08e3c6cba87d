package history

import "strings"

// Direction selects which way Cycle moves.
type Direction string

const (
	Next Direction = "next" // towards older entries
	Prev Direction = "prev" // towards newer entries
)

// ParseDirection validates a direction argument.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Next, Prev:
		return Direction(s), true
	}
	return "", false
}

// Match decides which entries take part in a cycle.
type Match int

const (
	Prefix    Match = iota // entries starting with the typed text
	Substring              // entries containing the typed text
)

func (m Match) matches(entry, typed string) bool {
	if m == Substring {
		return strings.Contains(entry, typed)
	}
	return strings.HasPrefix(entry, typed)
}

// Cursor walks through the entries matching the text typed when cycling
// started. The typed text itself is part of the ring so cycling returns to it.
type Cursor struct {
	active     bool
	match      Match
	candidates []string
	pos        int
}

// Active reports whether a cycle is in progress.
func (c *Cursor) Active() bool { return c.active }

// Cycle moves one step and returns the text to show. entries are oldest
// first. entries and typed are only read when a cycle starts; switching the
// match kind restarts the cycle.
func (c *Cursor) Cycle(dir Direction, typed string, entries []string, match Match) string {
	if !c.active || c.match != match {
		c.start(typed, entries, match)
	}
	n := len(c.candidates)
	if dir == Next {
		c.pos = (c.pos - 1 + n) % n
	} else {
		c.pos = (c.pos + 1) % n
	}
	return c.candidates[c.pos]
}

func (c *Cursor) start(typed string, entries []string, match Match) {
	c.candidates = c.candidates[:0]
	for _, e := range entries {
		if match.matches(e, typed) {
			c.candidates = append(c.candidates, e)
		}
	}
	c.candidates = append(c.candidates, typed)
	c.pos = len(c.candidates) - 1
	c.match = match
	c.active = true
}

// Reset ends the cycle; the next Cycle starts from the typed text again.
func (c *Cursor) Reset() {
	c.active = false
	c.candidates = nil
}

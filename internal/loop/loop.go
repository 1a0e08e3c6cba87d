// Package loop lets worker goroutines hand closures back to the bubbletea
// update loop. Registries are only ever touched from inside Update, so anything
// computed off the loop is delivered through Post and run by Drain.
package loop

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ReadyMsg tells the update loop that posted work is waiting to be drained.
type ReadyMsg struct{}

// Loop is a FIFO of closures waiting for the next update turn.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{notify: make(chan struct{}, 1)}
}

// Post queues fn to run on the update loop. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Drain runs every closure queued before the call, in order, and returns how
// many ran. Closures posted while draining wait for the next turn.
func (l *Loop) Drain() int {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of queued closures.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Wait returns a tea.Cmd that blocks until work is posted and yields ReadyMsg.
// It yields nil once ctx is done. Re-issue it after each ReadyMsg.
func (l *Loop) Wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		if l.Pending() > 0 {
			return ReadyMsg{}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-l.notify:
			return ReadyMsg{}
		}
	}
}

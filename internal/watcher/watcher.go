// Package watcher reports changes to the working directory so the library and
// the image file list can be reloaded.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/pubsub"
)

// Changed lists the paths of dir touched during one debounce window.
type Changed struct {
	Dir   string
	Paths []string
}

// Event is a pubsub event carrying Changed.
type Event = pubsub.Event[Changed]

// Config holds watcher configuration options.
type Config struct {
	Debounce   time.Duration
	ShowHidden bool // report dot files too
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{Debounce: 300 * time.Millisecond}
}

// Watcher monitors one directory at a time.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cfg       Config
	broker    *pubsub.Broker[Changed]
	done      chan struct{}
	stopOnce  sync.Once

	mu  sync.Mutex
	dir string
}

// New creates a watcher that is not watching anything yet.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultConfig().Debounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsw,
		cfg:       cfg,
		broker:    pubsub.NewBroker[Changed](),
		done:      make(chan struct{}),
	}, nil
}

// Subscribe returns a channel of change notifications.
func (w *Watcher) Subscribe(ctx context.Context) <-chan Event {
	return w.broker.Subscribe(ctx)
}

// Start begins processing file system events.
func (w *Watcher) Start() {
	go w.loop()
}

// Watch switches the watched directory to dir.
func (w *Watcher) Watch(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if abs == w.dir {
		return nil
	}
	if w.dir != "" {
		_ = w.fsWatcher.Remove(w.dir)
	}
	if err := w.fsWatcher.Add(abs); err != nil {
		w.dir = ""
		return fmt.Errorf("watching directory %s: %w", abs, err)
	}
	w.dir = abs
	log.Debug(log.CatWatcher, "Watching directory", "dir", abs)
	return nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.broker.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending []string
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if !slices.Contains(pending, event.Name) {
				pending = append(pending, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			changed := Changed{Dir: w.Dir(), Paths: pending}
			pending = nil
			log.Debug(log.CatWatcher, "Directory changed", "dir", changed.Dir, "paths", len(changed.Paths))
			w.broker.Publish(pubsub.ChangedEvent, changed)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watcher error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if filepath.Dir(event.Name) != w.Dir() {
		return false
	}
	return w.cfg.ShowHidden || !strings.HasPrefix(filepath.Base(event.Name), ".")
}

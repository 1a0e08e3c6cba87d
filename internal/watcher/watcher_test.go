package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimg/internal/watcher"
)

func newWatcher(t *testing.T, cfg watcher.Config, dir string) (<-chan watcher.Event, *watcher.Watcher) {
	t.Helper()
	w, err := watcher.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events := w.Subscribe(ctx)
	require.NoError(t, w.Watch(dir))
	w.Start()
	return events, w
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	events, _ := newWatcher(t, watcher.Config{Debounce: 50 * time.Millisecond}, dir)

	for i := range 5 {
		path := filepath.Join(dir, fmt.Sprintf("img%d.png", i%2))
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case ev := <-events:
		require.Equal(t, dir, ev.Payload.Dir)
		require.ElementsMatch(t, []string{
			filepath.Join(dir, "img0.png"),
			filepath.Join(dir, "img1.png"),
		}, ev.Payload.Paths)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected second notification: %v", ev.Payload.Paths)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	events, _ := newWatcher(t, watcher.Config{Debounce: 20 * time.Millisecond}, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))

	select {
	case ev := <-events:
		t.Fatalf("unexpected notification: %v", ev.Payload.Paths)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	events, _ := newWatcher(t, watcher.Config{Debounce: 20 * time.Millisecond}, dir)

	require.NoError(t, os.Remove(path))

	select {
	case ev := <-events:
		require.Equal(t, []string{path}, ev.Payload.Paths)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatcher_SwitchesDirectory(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	events, w := newWatcher(t, watcher.Config{Debounce: 20 * time.Millisecond}, first)

	require.NoError(t, w.Watch(second))
	require.Equal(t, second, w.Dir())

	require.NoError(t, os.WriteFile(filepath.Join(first, "old.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(second, "new.png"), []byte("x"), 0o644))

	select {
	case ev := <-events:
		require.Equal(t, second, ev.Payload.Dir)
		require.Equal(t, []string{filepath.Join(second, "new.png")}, ev.Payload.Paths)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatcher_WatchMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig())
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
	require.Empty(t, w.Dir())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig())
	require.NoError(t, err)
	w.Start()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

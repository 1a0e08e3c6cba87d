package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := New(Config{Name: "test", MaxWorkers: 2})

	var ran atomic.Int32
	for range 10 {
		require.NoError(t, p.Submit(func(ctx context.Context) { ran.Add(1) }))
	}

	p.Wait()
	require.NoError(t, p.Shutdown(time.Second))
	require.Equal(t, int32(10), ran.Load())
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p := New(Config{Name: "bounded", MaxWorkers: 2})

	var current, peak atomic.Int32
	release := make(chan struct{})
	for range 6 {
		require.NoError(t, p.Submit(func(ctx context.Context) {
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			<-release
			current.Add(-1)
		}))
	}

	require.Eventually(t, func() bool { return p.Active() == 2 }, time.Second, 5*time.Millisecond)
	require.True(t, p.Busy())
	close(release)

	p.Wait()
	require.NoError(t, p.Shutdown(time.Second))
	require.LessOrEqual(t, peak.Load(), int32(2))
	require.False(t, p.Busy())
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(Config{})
	require.NoError(t, p.Shutdown(time.Second))
	require.NoError(t, p.Shutdown(time.Second))

	err := p.Submit(func(ctx context.Context) {})
	require.ErrorIs(t, err, ErrPoolClosed)
	require.True(t, p.Closed())
}

func TestPool_ShutdownDropsQueuedTasks(t *testing.T) {
	p := New(Config{Name: "single", MaxWorkers: 1})

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		<-release
	}))
	<-started

	var queuedRan atomic.Bool
	require.NoError(t, p.Submit(func(ctx context.Context) { queuedRan.Store(true) }))
	require.True(t, p.Busy())

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	require.NoError(t, p.Shutdown(time.Second))

	p.Wait()
	require.False(t, queuedRan.Load())
	require.False(t, p.Busy())
}

func TestPool_ShutdownTimeoutCancelsContext(t *testing.T) {
	p := New(Config{Name: "slow", MaxWorkers: 1})

	cancelled := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	}))
	<-started

	err := p.Shutdown(20 * time.Millisecond)
	require.True(t, errors.Is(err, ErrShutdownTimeout))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		require.FailNow(t, "task context was not cancelled")
	}
}

func TestPool_RecoversPanics(t *testing.T) {
	p := New(Config{Name: "panicky", MaxWorkers: 1})

	var after atomic.Bool
	require.NoError(t, p.Submit(func(ctx context.Context) { panic("boom") }))
	require.NoError(t, p.Submit(func(ctx context.Context) { after.Store(true) }))

	p.Wait()
	require.NoError(t, p.Shutdown(time.Second))
	require.True(t, after.Load())
}

func TestPool_NilTask(t *testing.T) {
	p := New(Config{})
	defer func() { _ = p.Shutdown(time.Second) }()
	require.Error(t, p.Submit(nil))
}

// Package worker provides bounded pools of background goroutines.
//
// Tasks receive a context that is cancelled when the pool is shut down past its
// deadline. Tasks still waiting for a slot when Shutdown is called never run. Tasks never touch registries directly; they post results back to
// the update loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/zjrosen/vimg/internal/log"
)

// DefaultMaxWorkers is the default number of tasks allowed to run at once.
const DefaultMaxWorkers = 4

// ErrPoolClosed is returned when submitting to a pool that has been shut down.
var ErrPoolClosed = errors.New("worker pool is closed")

// DefaultShutdownTimeout bounds Shutdown when no timeout is given.
const DefaultShutdownTimeout = 5 * time.Second

// ErrShutdownTimeout is returned when in-flight tasks outlive the shutdown deadline.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Task is a unit of background work.
type Task func(ctx context.Context)

// Config holds configuration for a pool.
type Config struct {
	Name       string // Used in log lines
	MaxWorkers int    // Maximum concurrent tasks (default: 4)
}

// Pool runs submitted tasks on at most MaxWorkers goroutines at a time.
type Pool struct {
	name   string
	max    int64
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	queue  context.Context // cancelled as soon as Shutdown starts
	drop   context.CancelFunc
	mu     sync.Mutex // guards wg.Add against Shutdown
	wg     sync.WaitGroup
	closed atomic.Bool
	active atomic.Int64
	queued atomic.Int64
}

// New creates a pool.
func New(cfg Config) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.Name == "" {
		cfg.Name = "pool"
	}
	ctx, cancel := context.WithCancel(context.Background())
	queue, drop := context.WithCancel(ctx)
	return &Pool{
		name:   cfg.Name,
		max:    int64(cfg.MaxWorkers),
		sem:    semaphore.NewWeighted(int64(cfg.MaxWorkers)),
		ctx:    ctx,
		cancel: cancel,
		queue:  queue,
		drop:   drop,
	}
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// MaxWorkers returns the concurrency bound.
func (p *Pool) MaxWorkers() int { return int(p.max) }

// Submit schedules task. It never blocks the caller: the spawned goroutine
// waits for a free slot. Returns ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return fmt.Errorf("%s: nil task", p.name)
	}

	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.queued.Add(1)
	p.mu.Unlock()

	go p.run(task)
	return nil
}

func (p *Pool) run(task Task) {
	defer p.wg.Done()

	err := p.sem.Acquire(p.queue, 1)
	p.queued.Add(-1)
	if err != nil {
		return
	}
	defer p.sem.Release(1)

	// Acquire can win a free slot even with a done context.
	if p.closed.Load() {
		log.Debug(log.CatWorker, "Dropping queued task", "pool", p.name)
		return
	}

	p.active.Add(1)
	defer p.active.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatWorker, "Task panic recovered",
				"pool", p.name,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	task(p.ctx)
}

// Active returns the number of tasks currently running.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Busy reports whether any task is running or waiting for a slot.
func (p *Pool) Busy() bool { return p.active.Load() > 0 || p.queued.Load() > 0 }

// Closed reports whether Shutdown has been called.
func (p *Pool) Closed() bool { return p.closed.Load() }

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() { p.wg.Wait() }

// Shutdown refuses new tasks, drops tasks still waiting for a slot and waits
// up to timeout for running ones. If they do not finish in time their context is cancelled and
// ErrShutdownTimeout is returned. A non-positive timeout means
// DefaultShutdownTimeout. Calling Shutdown twice is safe.
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.mu.Lock()
	already := p.closed.Swap(true)
	p.mu.Unlock()
	p.drop()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	if !already {
		log.Debug(log.CatWorker, "Shutting down pool", "pool", p.name, "active", p.Active())
	}

	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-timer.C:
		p.cancel()
		log.Warn(log.CatWorker, "Pool shutdown timed out", "pool", p.name, "timeout", timeout)
		return fmt.Errorf("%s: %w", p.name, ErrShutdownTimeout)
	}
}

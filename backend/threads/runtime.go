// Package threads implements the concurrency contract on a preemptible
// multi-threaded host: blocking, timeouts, FIFO ordering and timer
// countdowns are all built from one mutex and deadline-capable condition
// waits per primitive. This is the heavyweight backend; the rtos backend
// mostly forwards to native equivalents.
//
// No primitive here ever holds two locks at once, which rules out
// lock-order deadlocks between distinct instances. All FromISR entry
// points report ErrNotImplemented: there is no true interrupt context on
// this host, and the layer does not guess at a locking strategy for one.
package threads

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/osal-go/osal/core"
	"github.com/osal-go/osal/internal/goid"
)

func currentOwner() uint64 {
	return goid.Current()
}

// Runtime is the threads backend. The zero value is not usable; create
// one with New.
type Runtime struct {
	logger  core.Logger
	metrics core.Metrics

	mu    sync.Mutex
	tasks map[string]*task
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the diagnostics logger. Defaults to NoOpLogger.
func WithLogger(l core.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Defaults to NilMetrics.
func WithMetrics(m core.Metrics) Option {
	return func(rt *Runtime) {
		if m != nil {
			rt.metrics = m
		}
	}
}

// New creates a threads Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:  core.NewNoOpLogger(),
		metrics: &core.NilMetrics{},
		tasks:   make(map[string]*task),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Name identifies the backend.
func (rt *Runtime) Name() string { return "threads" }

// task wraps one goroutine. Delete cancels the task context and joins;
// the goroutine itself cannot be terminated from outside, so an entry
// function that ignores its context makes Delete block. That is the
// caller's graceful-shutdown obligation from the contract, made explicit.
type task struct {
	id     string
	name   string
	rt     *Runtime
	cancel context.CancelFunc
	done   chan struct{}

	deleteOnce sync.Once
}

// NewTask creates a goroutine running entry. A caller-controlled stack
// cannot be supplied to a goroutine, so StackSize is validated but
// advisory: goroutine stacks grow on demand, and no second stack is ever
// allocated behind the caller's back.
func (rt *Runtime) NewTask(cfg core.TaskConfig, entry core.TaskFunc) (core.Task, error) {
	if entry == nil {
		return nil, core.ErrInvalidPointer
	}
	if cfg.Name == "" {
		return nil, core.ErrInvalidPointer
	}
	if err := core.CheckName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.StackSize <= 0 {
		return nil, core.ErrInvalidSize
	}
	if cfg.Attr != nil {
		if cfg.Attr.CoreAffinity != core.NoAffinity {
			if cfg.Attr.CoreAffinity < 0 || cfg.Attr.CoreAffinity >= runtime.NumCPU() {
				return nil, core.ErrInvalidArgument
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		id:     core.NewHandleID(),
		name:   cfg.Name,
		rt:     rt,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	rt.mu.Lock()
	rt.tasks[t.id] = t
	rt.mu.Unlock()

	go func() {
		defer close(t.done)
		defer func() {
			rt.mu.Lock()
			delete(rt.tasks, t.id)
			rt.mu.Unlock()
		}()
		entry(ctx)
	}()

	rt.logger.Debug("task created", core.F("name", t.name), core.F("id", t.id))
	return t, nil
}

func (t *task) ID() string   { return t.id }
func (t *task) Name() string { return t.name }

// Done is closed when the entry function has returned.
func (t *task) Done() <-chan struct{} { return t.done }

// Delete cancels the task context and joins the goroutine. It does not
// flush in-flight queue operations or release locks the task holds.
func (t *task) Delete() error {
	t.deleteOnce.Do(func() {
		t.cancel()
	})
	<-t.done

	t.rt.logger.Debug("task deleted", core.F("name", t.name), core.F("id", t.id))
	return nil
}

// NewQueue creates a bounded blocking queue.
func (rt *Runtime) NewQueue(cfg core.QueueConfig) (core.Queue, error) {
	return rt.newQueue(cfg)
}

// NewBinarySemaphore creates a binary semaphore; initial must be 0 or 1.
func (rt *Runtime) NewBinarySemaphore(name string, initial uint32) (core.Semaphore, error) {
	return rt.newBinarySemaphore(name, initial)
}

// NewCountingSemaphore creates a counting semaphore. max of 0 means "use
// initial as the ceiling".
func (rt *Runtime) NewCountingSemaphore(name string, initial, max uint32) (core.Semaphore, error) {
	return rt.newCountingSemaphore(name, initial, max)
}

// NewMutex creates an ownership-checked mutex.
func (rt *Runtime) NewMutex(name string) (core.Mutex, error) {
	return rt.newMutex(name)
}

// NewTimer creates a dormant software timer with a dedicated worker.
func (rt *Runtime) NewTimer(cfg core.TimerConfig, fn core.TimerFunc) (core.Timer, error) {
	return rt.newTimer(cfg, fn)
}

// Delay suspends the calling goroutine only.
func (rt *Runtime) Delay(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// NowMS returns the shared monotonic millisecond counter.
func (rt *Runtime) NowMS() uint32 {
	return core.NowMS()
}

// Stats returns a diagnostics snapshot of the backend.
func (rt *Runtime) Stats() core.RuntimeStats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return core.RuntimeStats{Backend: rt.Name(), Tasks: len(rt.tasks)}
}

// Close is a no-op: the threads backend keeps no shared engine context.
// Primitives own their worker goroutines and release them on Delete.
func (rt *Runtime) Close() error {
	return nil
}

// Package rtos implements the concurrency contract by forwarding to the
// host's native primitives, the way a real-time kernel port would: queues
// and semaphores ride on buffered channels, and all software timers share
// one scheduler loop driven by a deadline heap. The backend is
// deliberately thin; the heavy lifting lives in the threads backend.
//
// Unlike the threads backend, the FromISR entry points here are real:
// they are non-suspending try operations, so callers written against both
// backends exercise the full contract surface on this one.
package rtos

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

// Runtime is the rtos backend. Create one with New; Close releases the
// shared timer scheduler.
type Runtime struct {
	logger  core.Logger
	metrics core.Metrics
	timers  *timerService

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

// New creates an rtos Runtime and starts its timer scheduler.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:  core.NewNoOpLogger(),
		metrics: &core.NilMetrics{},
		tasks:   make(map[string]*task),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.timers = newTimerService(rt)
	return rt
}

// Name identifies the backend.
func (rt *Runtime) Name() string { return "rtos" }

type task struct {
	id     string
	name   string
	rt     *Runtime
	cancel context.CancelFunc
	done   chan struct{}

	deleteOnce sync.Once
}

// NewTask creates a goroutine running entry. Validation matches the
// threads backend; the two backends share one calling contract.
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

func (t *task) ID() string            { return t.id }
func (t *task) Name() string          { return t.name }
func (t *task) Done() <-chan struct{} { return t.done }

// Delete cancels the task context and joins the goroutine.
func (t *task) Delete() error {
	t.deleteOnce.Do(func() {
		t.cancel()
	})
	<-t.done

	t.rt.logger.Debug("task deleted", core.F("name", t.name), core.F("id", t.id))
	return nil
}

// NewQueue creates a channel-backed bounded queue.
func (rt *Runtime) NewQueue(cfg core.QueueConfig) (core.Queue, error) {
	return rt.newQueue(cfg)
}

// NewBinarySemaphore creates a binary semaphore; initial must be 0 or 1.
func (rt *Runtime) NewBinarySemaphore(name string, initial uint32) (core.Semaphore, error) {
	return rt.newSemaphore(name, initial, 1, true)
}

// NewCountingSemaphore creates a counting semaphore. max of 0 means "use
// initial as the ceiling" on every backend; it is part of the creation
// contract, not an implementation detail.
func (rt *Runtime) NewCountingSemaphore(name string, initial, max uint32) (core.Semaphore, error) {
	if max == 0 && initial == 0 {
		return nil, core.ErrInvalidSemValue
	}
	if max != 0 && initial > max {
		return nil, core.ErrInvalidSemValue
	}
	ceiling := max
	if ceiling == 0 {
		ceiling = initial
	}
	return rt.newSemaphore(name, initial, ceiling, false)
}

// NewMutex creates an ownership-checked mutex.
func (rt *Runtime) NewMutex(name string) (core.Mutex, error) {
	return rt.newMutex(name)
}

// NewTimer registers a dormant timer with the shared scheduler.
func (rt *Runtime) NewTimer(cfg core.TimerConfig, fn core.TimerFunc) (core.Timer, error) {
	return rt.timers.newTimer(cfg, fn)
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
	tasks := len(rt.tasks)
	rt.mu.Unlock()
	return core.RuntimeStats{
		Backend: rt.Name(),
		Tasks:   tasks,
		Timers:  rt.timers.timerCount(),
	}
}

// Close stops the shared timer scheduler. Timers must be deleted first;
// any remaining ones simply stop firing.
func (rt *Runtime) Close() error {
	rt.timers.stop()
	return nil
}

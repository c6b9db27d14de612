package osal

import (
	"sync"
	"time"

	"github.com/osal-go/osal/backend/threads"
	"github.com/osal-go/osal/core"
)

// Re-exported core types so simple programs import only this package.
type (
	// Runtime is a concurrency backend.
	Runtime = core.Runtime

	// Task is a running unit of execution.
	Task = core.Task

	// Queue is a bounded blocking message queue.
	Queue = core.Queue

	// Semaphore is a binary or counting semaphore.
	Semaphore = core.Semaphore

	// Mutex is an exclusive-ownership lock.
	Mutex = core.Mutex

	// Timer is a software timer.
	Timer = core.Timer

	// TaskConfig describes a task to create.
	TaskConfig = core.TaskConfig

	// QueueConfig describes a queue to create.
	QueueConfig = core.QueueConfig

	// TimerConfig describes a timer to create.
	TimerConfig = core.TimerConfig

	// TaskFunc is a task entry function.
	TaskFunc = core.TaskFunc

	// TimerFunc is a timer expiry callback.
	TimerFunc = core.TimerFunc
)

// Re-exported timeout sentinels.
const (
	// NoWait makes a blocking call poll instead of suspend.
	NoWait = core.NoWait

	// Forever makes a blocking call wait unboundedly.
	Forever = core.Forever
)

var (
	defaultMu sync.RWMutex
	defaultRT core.Runtime
)

// Default returns the process-wide runtime, creating a threads backend on
// first use.
func Default() core.Runtime {
	defaultMu.RLock()
	rt := defaultRT
	defaultMu.RUnlock()
	if rt != nil {
		return rt
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRT == nil {
		defaultRT = threads.New()
	}
	return defaultRT
}

// SetDefault replaces the process-wide runtime. The previous runtime is
// not closed; the caller owns both lifetimes. A nil runtime resets to the
// lazily created threads backend.
func SetDefault(rt core.Runtime) {
	defaultMu.Lock()
	defaultRT = rt
	defaultMu.Unlock()
}

// Shutdown closes the process-wide runtime, if one was created, and
// resets it.
func Shutdown() error {
	defaultMu.Lock()
	rt := defaultRT
	defaultRT = nil
	defaultMu.Unlock()

	if rt == nil {
		return nil
	}
	return rt.Close()
}

// NewTask creates a task on the default runtime.
func NewTask(cfg TaskConfig, entry TaskFunc) (Task, error) {
	return Default().NewTask(cfg, entry)
}

// NewQueue creates a bounded queue on the default runtime.
func NewQueue(cfg QueueConfig) (Queue, error) {
	return Default().NewQueue(cfg)
}

// NewBinarySemaphore creates a binary semaphore on the default runtime.
func NewBinarySemaphore(name string, initial uint32) (Semaphore, error) {
	return Default().NewBinarySemaphore(name, initial)
}

// NewCountingSemaphore creates a counting semaphore on the default
// runtime. max of 0 means "use initial as the ceiling".
func NewCountingSemaphore(name string, initial, max uint32) (Semaphore, error) {
	return Default().NewCountingSemaphore(name, initial, max)
}

// NewMutex creates an ownership-checked mutex on the default runtime.
func NewMutex(name string) (Mutex, error) {
	return Default().NewMutex(name)
}

// NewTimer creates a software timer on the default runtime.
func NewTimer(cfg TimerConfig, fn TimerFunc) (Timer, error) {
	return Default().NewTimer(cfg, fn)
}

// Delay suspends the calling goroutine only.
func Delay(d time.Duration) {
	Default().Delay(d)
}

// NowMS returns the shared monotonic millisecond counter.
func NowMS() uint32 {
	return Default().NowMS()
}

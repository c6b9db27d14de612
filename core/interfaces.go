package core

import "time"

// =============================================================================
// Runtime: the factory every backend implements
// =============================================================================

// Runtime creates the concurrency primitives of one native backend. The
// call contract (inputs, timeout semantics, status codes, ISR-context
// restrictions) is identical across backends even where the native
// facilities underneath differ radically.
//
// Handles returned by a Runtime are owned by their creator until Delete is
// called; they are not reference-counted, and using a handle after Delete
// returns ErrInvalidID.
type Runtime interface {
	// Name identifies the backend ("threads", "rtos").
	Name() string

	// NewTask creates a native execution context running entry. A failed
	// create returns a nil handle and leaves nothing behind.
	NewTask(cfg TaskConfig, entry TaskFunc) (Task, error)

	// NewQueue creates a bounded blocking queue.
	NewQueue(cfg QueueConfig) (Queue, error)

	// NewBinarySemaphore creates a semaphore with a ceiling of 1. The
	// initial value must be 0 or 1.
	NewBinarySemaphore(name string, initial uint32) (Semaphore, error)

	// NewCountingSemaphore creates a counting semaphore. A max of 0 means
	// "use initial as the ceiling"; this is part of the creation contract,
	// not backend-specific behavior, so initial and max may not both be
	// zero.
	NewCountingSemaphore(name string, initial, max uint32) (Semaphore, error)

	// NewMutex creates a mutex with single-owner semantics: only the
	// context that took it may give it back, enforced uniformly by the
	// layer.
	NewMutex(name string) (Mutex, error)

	// NewTimer creates a software timer in the dormant state.
	NewTimer(cfg TimerConfig, fn TimerFunc) (Timer, error)

	// Delay suspends the calling context only.
	Delay(d time.Duration)

	// NowMS returns a monotonically increasing millisecond counter that
	// wraps at 2^32. Use ElapsedMS to measure intervals across the wrap.
	NowMS() uint32

	// Close releases backend-wide resources (shared engine contexts).
	// Primitives created by the runtime must be deleted first; Close does
	// not chase them.
	Close() error
}

// =============================================================================
// Primitive handles
// =============================================================================

// Handle is the part of every primitive used for identification and
// diagnostics.
type Handle interface {
	// ID is a unique identifier assigned at creation.
	ID() string

	// Name is the caller-supplied name, possibly empty.
	Name() string
}

// Task is a native execution context. It owns no concurrency state itself;
// it is the execution unit the other primitives coordinate.
type Task interface {
	Handle

	// Delete terminates the task: its context is cancelled and the call
	// joins until the entry function returns. Delete does not flush
	// in-flight queue operations or release locks the task holds; callers
	// must guarantee the task holds no primitive when deleted.
	Delete() error

	// Done is closed when the entry function has returned.
	Done() <-chan struct{}
}

// Queue is a fixed-capacity FIFO of fixed-size items with blocking send
// and receive. Item order is FIFO for the sequence of successfully
// completed sends and receives; wakeup order among multiple blocked
// callers is unspecified.
type Queue interface {
	Handle

	// Send copies item into the queue. The item length must equal
	// ItemSize. With NoWait a full queue returns ErrQueueFull; with a
	// finite timeout expiry returns ErrQueueTimeout; the deadline is
	// computed once at entry, so spurious wakeups cannot extend it.
	Send(item []byte, timeout time.Duration) error

	// Receive copies the oldest item into buf, whose length must be at
	// least ItemSize. With NoWait an empty queue returns ErrQueueEmpty;
	// with a finite timeout expiry returns ErrQueueTimeout.
	Receive(buf []byte, timeout time.Duration) error

	// SendFromISR is the non-suspending send for interrupt context. No
	// timeout parameter; it must never suspend the caller. Backends with
	// no true interrupt context report ErrNotImplemented.
	SendFromISR(item []byte) error

	// ReceiveFromISR is the non-suspending receive for interrupt context.
	ReceiveFromISR(buf []byte) error

	// Count returns the number of items currently queued.
	Count() int

	// Capacity returns the fixed capacity.
	Capacity() int

	// ItemSize returns the fixed item size in bytes.
	ItemSize() int

	// Stats returns a diagnostics snapshot.
	Stats() QueueStats

	// Delete destroys the queue. Blocked senders and receivers are woken
	// and their calls return ErrInvalidID, as do all later operations on
	// the handle.
	Delete() error
}

// Semaphore is a bounded non-negative counter. Binary semaphores are
// counting semaphores with a ceiling of 1 whose Give saturates
// idempotently.
type Semaphore interface {
	Handle

	// Give increments the count. A counting semaphore at its ceiling
	// returns ErrSemFailure; a binary semaphore already at 1 stays at 1
	// and returns nil.
	Give() error

	// Take decrements the count, blocking per the timeout classification.
	// An unavailable semaphore returns ErrSemTimeout for both NoWait and
	// expired finite timeouts; permanent failures return ErrSemFailure.
	Take(timeout time.Duration) error

	// GiveFromISR is the non-suspending give for interrupt context.
	GiveFromISR() error

	// TakeFromISR is the non-suspending take for interrupt context.
	TakeFromISR() error

	// Count returns the current count.
	Count() uint32

	// Delete destroys the semaphore, waking blocked takers with
	// ErrInvalidID.
	Delete() error
}

// Mutex is exclusive ownership: only the context that took it may give it
// back. Take and Give carry no timeout parameter and there are no ISR
// variants at all; interrupt context has no ownership semantics, so the
// restriction is expressed by the interface rather than a runtime check.
type Mutex interface {
	Handle

	// Take acquires the mutex, blocking until available.
	Take() error

	// Give releases the mutex. A give by a context that does not hold it
	// returns ErrSemFailure.
	Give() error

	// Delete destroys the mutex, waking blocked takers with ErrInvalidID.
	Delete() error
}

// Timer is a software timer. Created dormant; Start moves it to active,
// firing moves a one-shot timer back to dormant, Stop is reachable from
// active at any time.
type Timer interface {
	Handle

	// Start activates the timer with a deadline of now plus the period.
	// Starting an active timer restarts its countdown.
	Start() error

	// Stop deactivates the timer without firing.
	Stop() error

	// Reset recomputes the deadline relative to the moment Reset is
	// called, regardless of when the timer was started. This is the
	// behavior enabling extend-on-activity patterns such as idle-timeout
	// timers; it also activates a dormant timer.
	Reset() error

	// ChangePeriod sets a new period, effective immediately, and
	// activates the timer if dormant.
	ChangePeriod(period time.Duration) error

	// IsActive reports whether the timer is counting down.
	IsActive() bool

	// Period returns the current period.
	Period() time.Duration

	// Context returns the opaque user context. Not synchronized against a
	// concurrently executing callback mutating it via SetContext.
	Context() any

	// SetContext replaces the opaque user context.
	SetContext(v any)

	// StartFromISR is the non-suspending start for interrupt context.
	StartFromISR() error

	// StopFromISR is the non-suspending stop for interrupt context.
	StopFromISR() error

	// ResetFromISR is the non-suspending reset for interrupt context.
	ResetFromISR() error

	// Delete destroys the timer. The engine context serving it is
	// released before Delete returns, so the control block cannot be
	// touched afterwards. Deleting a timer from inside its own callback
	// is undefined.
	Delete() error
}

package core

import (
	"context"
	"time"
)

// MaxNameLen is the maximum length of a primitive name. Longer names are
// rejected with ErrNameTooLong before any state is created.
const MaxNameLen = 32

// Timeout sentinels. Every blocking operation classifies its timeout
// argument into exactly one of three wait modes:
//
//   - NoWait: return immediately with a full/empty/timeout code if the
//     operation is not immediately satisfiable.
//   - Forever: block until satisfied or a permanent failure occurs.
//   - any positive duration: block up to that long, then return a distinct
//     timeout code (never confused with the permanent-failure code).
const (
	// NoWait makes a blocking call poll instead of suspend.
	NoWait time.Duration = 0

	// Forever makes a blocking call wait unboundedly.
	Forever time.Duration = -1
)

// NoAffinity disables core pinning in TaskAttr.
const NoAffinity = -1

// WaitMode is the classification of a timeout argument.
type WaitMode int

const (
	// WaitNone is a non-blocking poll.
	WaitNone WaitMode = iota

	// WaitForever is an unbounded wait.
	WaitForever

	// WaitTimed is a wait bounded by a deadline computed once at entry.
	WaitTimed
)

// ClassifyTimeout maps a timeout argument onto its wait mode. Any negative
// duration is treated as Forever.
func ClassifyTimeout(timeout time.Duration) WaitMode {
	switch {
	case timeout == NoWait:
		return WaitNone
	case timeout < 0:
		return WaitForever
	default:
		return WaitTimed
	}
}

// TaskFunc is the entry function of a task. The context is cancelled when
// the task is deleted; entry functions that block must observe it, since
// Delete joins the task and the layer has no way to terminate a context
// that ignores cancellation.
type TaskFunc func(ctx context.Context)

// TimerFunc is a timer expiry callback. It executes in the timer engine's
// context, never in the creating task's context. It must not perform an
// unbounded blocking wait: on a shared-engine backend that stalls every
// other pending expiry. Control operations (Start, Stop, Reset,
// ChangePeriod) are legal from inside the callback.
type TimerFunc func(t Timer)

// TaskAttr carries optional task attributes.
type TaskAttr struct {
	// CoreAffinity pins the task to a core (0, 1, ...) or NoAffinity.
	// Advisory on hosts that do not expose core pinning.
	CoreAffinity int
}

// NewTaskAttr returns attributes with affinity disabled.
func NewTaskAttr() TaskAttr {
	return TaskAttr{CoreAffinity: NoAffinity}
}

// TaskConfig describes a task to create.
type TaskConfig struct {
	// Name identifies the task in diagnostics. Required, at most
	// MaxNameLen characters.
	Name string

	// StackSize is the requested stack size in bytes. Must be positive.
	// Advisory on hosts whose execution contexts grow their own stacks;
	// the layer never allocates a second stack behind a caller-supplied
	// one.
	StackSize int

	// Priority is the scheduling priority handed to the host runtime.
	Priority uint32

	// Attr holds optional attributes; nil means defaults.
	Attr *TaskAttr
}

// QueueConfig describes a bounded queue to create. Capacity and ItemSize
// are fixed for the lifetime of the queue.
type QueueConfig struct {
	// Name identifies the queue in diagnostics. At most MaxNameLen
	// characters; may be empty.
	Name string

	// Capacity is the maximum number of items (>= 1).
	Capacity int

	// ItemSize is the fixed size of each item in bytes (>= 1). Items are
	// copied by value on send and receive; the queue never stores or
	// exposes a reference to a caller's buffer.
	ItemSize int

	// Buffer optionally supplies the backing storage for the ring buffer.
	// When non-nil it must hold at least Capacity*ItemSize bytes or
	// creation fails with ErrInvalidSize; the queue never silently falls
	// back to allocating its own storage when a buffer was supplied.
	// Backends without a ring buffer reject a supplied Buffer with
	// ErrOperationNotSupported.
	Buffer []byte
}

// TimerConfig describes a software timer to create.
type TimerConfig struct {
	// Name identifies the timer in diagnostics. At most MaxNameLen
	// characters; may be empty.
	Name string

	// Period is the countdown duration. Must be positive.
	Period time.Duration

	// AutoReload selects periodic firing. A one-shot timer returns to the
	// dormant state after firing once; an auto-reload timer recomputes its
	// deadline from the moment it fired, so sustained load causes period
	// drift rather than catch-up bursts.
	AutoReload bool

	// Context is the initial opaque user context, readable from the
	// callback via Timer.Context.
	Context any
}

// CheckName validates a primitive name against MaxNameLen.
func CheckName(name string) error {
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	return nil
}

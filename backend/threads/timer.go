package threads

import (
	"sync"
	"time"

	"github.com/osal-go/osal/core"
)

// timer is the thread-backed software timer: one dedicated worker
// goroutine per timer, blocked on the same deadline-capable condition
// variable the queue uses. The worker waits unconditionally while the
// timer is dormant, waits with a deadline while it is active, and invokes
// the callback outside the lock so the callback may call back into
// Start/Stop/Reset/ChangePeriod without self-deadlock.
type timer struct {
	id   string
	name string
	rt   *Runtime

	mu   sync.Mutex
	cond *condVar

	period     time.Duration
	autoReload bool
	fn         core.TimerFunc
	userCtx    any

	active   bool
	stopReq  bool
	closed   bool
	fires    uint64
	joined   chan struct{}
}

// TimerBlock is caller-supplied storage for a timer control block. A
// timer created in a block keeps its entire control state inside the
// block; creation fails rather than allocating auxiliary state elsewhere.
type TimerBlock struct {
	t timer
}

func (rt *Runtime) newTimer(cfg core.TimerConfig, fn core.TimerFunc) (*timer, error) {
	return rt.newTimerAt(nil, cfg, fn)
}

// NewTimerInBlock creates a timer whose control block lives in the
// caller-supplied block. The block must not be reused until the timer has
// been deleted.
func (rt *Runtime) NewTimerInBlock(block *TimerBlock, cfg core.TimerConfig, fn core.TimerFunc) (core.Timer, error) {
	if block == nil {
		return nil, core.ErrInvalidPointer
	}
	return rt.newTimerAt(block, cfg, fn)
}

func (rt *Runtime) newTimerAt(block *TimerBlock, cfg core.TimerConfig, fn core.TimerFunc) (*timer, error) {
	if fn == nil {
		return nil, core.ErrInvalidPointer
	}
	if err := core.CheckName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.Period <= 0 {
		return nil, core.ErrTimerInvalidArgs
	}

	var t *timer
	if block != nil {
		if block.t.joined != nil {
			return nil, core.ErrObjectInUse
		}
		t = &block.t
	} else {
		t = &timer{}
	}

	t.id = core.NewHandleID()
	t.name = cfg.Name
	t.rt = rt
	t.period = cfg.Period
	t.autoReload = cfg.AutoReload
	t.fn = fn
	t.userCtx = cfg.Context
	t.joined = make(chan struct{})
	t.cond = newCondVar(&t.mu)

	go t.worker()

	rt.logger.Debug("timer created",
		core.F("name", t.name), core.F("id", t.id),
		core.F("period", t.period), core.F("auto_reload", t.autoReload))
	return t, nil
}

// worker is the dedicated countdown loop. The deadline of an active wait
// is absolute; a control signal while active recomputes it from the time
// of the signal, which is what gives Reset its extend-on-activity
// semantics. After an auto-reload expiry the next deadline is measured
// from the time of firing, not from the ideal schedule, so sustained load
// causes period drift rather than catch-up bursts.
func (t *timer) worker() {
	defer close(t.joined)

	t.mu.Lock()
	defer t.mu.Unlock()

	for !t.stopReq {
		for !t.active && !t.stopReq {
			t.cond.wait()
		}
		if t.stopReq {
			return
		}

		deadline := time.Now().Add(t.period)

		for t.active && !t.stopReq {
			if t.cond.waitDeadline(deadline) {
				// Woken by a control operation.
				if !t.active || t.stopReq {
					break
				}
				deadline = time.Now().Add(t.period)
				continue
			}

			// Expired: fire outside the lock.
			fn := t.fn
			if !t.autoReload {
				t.active = false
			} else {
				deadline = time.Now().Add(t.period)
			}
			t.fires++
			t.mu.Unlock()
			t.rt.metrics.RecordTimerFire(t.name)
			fn(t)
			t.mu.Lock()

			if !t.autoReload {
				break
			}
		}
	}
}

func (t *timer) ID() string   { return t.id }
func (t *timer) Name() string { return t.name }

// Start activates the timer; the worker computes the new deadline when it
// wakes. Starting an active timer restarts its countdown.
func (t *timer) Start() error {
	return t.setActive(true)
}

// Stop deactivates the timer without firing; it returns to dormant.
func (t *timer) Stop() error {
	return t.setActive(false)
}

// Reset recomputes the deadline relative to now, regardless of when the
// timer was originally started.
func (t *timer) Reset() error {
	return t.setActive(true)
}

func (t *timer) setActive(active bool) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return core.ErrInvalidID
	}
	t.active = active
	t.cond.broadcast()
	t.mu.Unlock()
	return nil
}

// ChangePeriod sets a new period, effective immediately, and activates a
// dormant timer.
func (t *timer) ChangePeriod(period time.Duration) error {
	if period <= 0 {
		return core.ErrTimerInvalidArgs
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return core.ErrInvalidID
	}
	t.period = period
	t.active = true
	t.cond.broadcast()
	t.mu.Unlock()
	return nil
}

func (t *timer) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active && !t.closed
}

func (t *timer) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// Context returns the opaque user context. Reads are serialized against
// SetContext but not against a concurrently executing callback.
func (t *timer) Context() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userCtx
}

// SetContext replaces the opaque user context.
func (t *timer) SetContext(v any) {
	t.mu.Lock()
	t.userCtx = v
	t.mu.Unlock()
}

// StartFromISR reports ErrNotImplemented: no interrupt context here.
func (t *timer) StartFromISR() error { return core.ErrNotImplemented }

// StopFromISR reports ErrNotImplemented, matching StartFromISR.
func (t *timer) StopFromISR() error { return core.ErrNotImplemented }

// ResetFromISR reports ErrNotImplemented, matching StartFromISR.
func (t *timer) ResetFromISR() error { return core.ErrNotImplemented }

// Delete requests worker termination and joins it before returning, so a
// still-running worker can never touch the control block after Delete.
// Deleting a timer from inside its own callback would join the caller and
// is undefined.
func (t *timer) Delete() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return core.ErrInvalidID
	}
	t.closed = true
	t.stopReq = true
	t.active = false
	t.cond.broadcast()
	t.mu.Unlock()

	<-t.joined

	t.rt.logger.Debug("timer deleted", core.F("name", t.name), core.F("id", t.id))
	return nil
}

// Stats returns a diagnostics snapshot.
func (t *timer) Stats() core.TimerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.TimerStats{Name: t.name, Active: t.active && !t.closed, Fires: t.fires}
}

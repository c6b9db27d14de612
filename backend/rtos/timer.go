package rtos

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/osal-go/osal/core"
)

// The timer engine of this backend is one shared scheduler loop serving
// every timer of the runtime, the way a kernel timer daemon does. Each
// timer is a small Dormant/Active state machine; control operations
// mutate it under the service lock and poke the loop, which keeps a
// min-heap of active deadlines and sleeps until the nearest one.
//
// Resource usage is bounded by construction: one goroutine per runtime,
// not one per timer. The tradeoff is that callbacks run back-to-back on
// the scheduler goroutine, so a callback that blocks stalls every other
// pending expiry; the callback contract forbids unbounded waits for
// exactly this reason.

// rtimer is one timer's control block. All fields after rt are guarded by
// the service mutex.
type rtimer struct {
	id   string
	name string
	rt   *Runtime
	svc  *timerService

	period     time.Duration
	autoReload bool
	fn         core.TimerFunc
	userCtx    any

	active   bool
	closed   bool
	deadline time.Time
	index    int // heap position, -1 when not queued
	fires    uint64
}

// timerHeap orders active timers by deadline.
type timerHeap []*rtimer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	n := len(*h)
	t := x.(*rtimer)
	t.index = n
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil // avoid memory leak
	t.index = -1
	*h = old[0 : n-1]
	return t
}

func (h *timerHeap) Peek() *rtimer {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

type timerService struct {
	rt *Runtime

	mu     sync.Mutex
	pq     timerHeap
	count  int // live (not deleted) timers
	wakeup chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newTimerService(rt *Runtime) *timerService {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &timerService{
		rt:     rt,
		pq:     make(timerHeap, 0),
		wakeup: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	heap.Init(&svc.pq)
	go svc.loop()
	return svc
}

func (svc *timerService) newTimer(cfg core.TimerConfig, fn core.TimerFunc) (*rtimer, error) {
	if fn == nil {
		return nil, core.ErrInvalidPointer
	}
	if err := core.CheckName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.Period <= 0 {
		return nil, core.ErrTimerInvalidArgs
	}

	t := &rtimer{
		id:         core.NewHandleID(),
		name:       cfg.Name,
		rt:         svc.rt,
		svc:        svc,
		period:     cfg.Period,
		autoReload: cfg.AutoReload,
		fn:         fn,
		userCtx:    cfg.Context,
		index:      -1,
	}

	svc.mu.Lock()
	svc.count++
	svc.mu.Unlock()

	svc.rt.logger.Debug("timer created",
		core.F("name", t.name), core.F("id", t.id),
		core.F("period", t.period), core.F("auto_reload", t.autoReload))
	return t, nil
}

// loop sleeps until the nearest deadline, fires whatever has expired, and
// recalculates. A poke on the wakeup channel forces recalculation after a
// control operation changed the heap.
func (svc *timerService) loop() {
	defer close(svc.done)

	sleep := time.NewTimer(time.Hour)
	sleep.Stop()

	for {
		next := svc.nextDeadline()
		if next == 0 {
			// No active timers; sleep until poked.
			next = 1000 * time.Hour
		}
		sleep.Reset(next)

		select {
		case <-svc.ctx.Done():
			sleep.Stop()
			return
		case <-sleep.C:
			svc.fireExpired()
		case <-svc.wakeup:
			if !sleep.Stop() {
				select {
				case <-sleep.C:
				default:
				}
			}
		}
	}
}

// nextDeadline returns how long to sleep until the nearest active timer,
// 0 when there is none or it is already due.
func (svc *timerService) nextDeadline() time.Duration {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	t := svc.pq.Peek()
	if t == nil {
		return 0
	}
	d := time.Until(t.deadline)
	if d <= 0 {
		return time.Nanosecond
	}
	return d
}

// fireExpired pops every due timer, reloads the periodic ones, and runs
// the callbacks outside the lock so they may issue control operations
// re-entrantly.
func (svc *timerService) fireExpired() {
	svc.mu.Lock()

	now := time.Now()
	var fired []*rtimer

	for svc.pq.Len() > 0 {
		t := svc.pq.Peek()
		if t.deadline.After(now) {
			break
		}
		heap.Pop(&svc.pq)
		if t.autoReload {
			// Reload measured from the time of firing, not the ideal
			// schedule: load causes drift, never catch-up bursts.
			t.deadline = now.Add(t.period)
			heap.Push(&svc.pq, t)
		} else {
			t.active = false
		}
		t.fires++
		fired = append(fired, t)
	}

	svc.mu.Unlock()

	for _, t := range fired {
		svc.rt.metrics.RecordTimerFire(t.name)
		t.fn(t)
	}
}

func (svc *timerService) poke() {
	select {
	case svc.wakeup <- struct{}{}:
	default:
	}
}

func (svc *timerService) stop() {
	svc.cancel()
	<-svc.done

	svc.mu.Lock()
	svc.pq = make(timerHeap, 0)
	heap.Init(&svc.pq)
	svc.mu.Unlock()
}

func (svc *timerService) timerCount() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.count
}

func (t *rtimer) ID() string   { return t.id }
func (t *rtimer) Name() string { return t.name }

// schedule (re)arms the timer with deadline now+period under the service
// lock. Shared by Start, Reset and ChangePeriod, which all share the
// recompute-from-now semantics.
func (t *rtimer) schedule() error {
	svc := t.svc
	svc.mu.Lock()
	if t.closed {
		svc.mu.Unlock()
		return core.ErrInvalidID
	}
	t.active = true
	t.deadline = time.Now().Add(t.period)
	if t.index >= 0 {
		heap.Fix(&svc.pq, t.index)
	} else {
		heap.Push(&svc.pq, t)
	}
	svc.mu.Unlock()

	svc.poke()
	return nil
}

// Start activates the timer; an already-active timer restarts.
func (t *rtimer) Start() error {
	return t.schedule()
}

// Reset recomputes the deadline relative to now.
func (t *rtimer) Reset() error {
	return t.schedule()
}

// Stop deactivates the timer without firing.
func (t *rtimer) Stop() error {
	svc := t.svc
	svc.mu.Lock()
	if t.closed {
		svc.mu.Unlock()
		return core.ErrInvalidID
	}
	t.active = false
	if t.index >= 0 {
		heap.Remove(&svc.pq, t.index)
	}
	svc.mu.Unlock()

	svc.poke()
	return nil
}

// ChangePeriod sets a new period, effective immediately, and activates a
// dormant timer.
func (t *rtimer) ChangePeriod(period time.Duration) error {
	if period <= 0 {
		return core.ErrTimerInvalidArgs
	}
	svc := t.svc
	svc.mu.Lock()
	if t.closed {
		svc.mu.Unlock()
		return core.ErrInvalidID
	}
	t.period = period
	svc.mu.Unlock()

	return t.schedule()
}

func (t *rtimer) IsActive() bool {
	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()
	return t.active && !t.closed
}

func (t *rtimer) Period() time.Duration {
	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()
	return t.period
}

// Context returns the opaque user context. Not synchronized against a
// concurrently executing callback.
func (t *rtimer) Context() any {
	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()
	return t.userCtx
}

// SetContext replaces the opaque user context.
func (t *rtimer) SetContext(v any) {
	t.svc.mu.Lock()
	t.userCtx = v
	t.svc.mu.Unlock()
}

// StartFromISR never suspends: control state changes under a short lock.
func (t *rtimer) StartFromISR() error { return t.Start() }

// StopFromISR never suspends, matching StartFromISR.
func (t *rtimer) StopFromISR() error { return t.Stop() }

// ResetFromISR never suspends, matching StartFromISR.
func (t *rtimer) ResetFromISR() error { return t.Reset() }

// Delete unregisters the timer from the shared scheduler. The scheduler
// goroutine outlives the timer, so there is no worker to join; a callback
// already dequeued before Delete may still complete.
func (t *rtimer) Delete() error {
	svc := t.svc
	svc.mu.Lock()
	if t.closed {
		svc.mu.Unlock()
		return core.ErrInvalidID
	}
	t.closed = true
	t.active = false
	if t.index >= 0 {
		heap.Remove(&svc.pq, t.index)
	}
	svc.count--
	svc.mu.Unlock()

	svc.poke()
	t.rt.logger.Debug("timer deleted", core.F("name", t.name), core.F("id", t.id))
	return nil
}

// Stats returns a diagnostics snapshot.
func (t *rtimer) Stats() core.TimerStats {
	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()
	return core.TimerStats{Name: t.name, Active: t.active && !t.closed, Fires: t.fires}
}

package threads

import (
	"sync"
	"time"
)

// condVar is a condition variable with deadline support. sync.Cond has no
// timed wait, so waiters select on a broadcast channel that is replaced on
// every wakeup: closing the current channel wakes every waiter of the
// current generation, and a fresh channel starts the next one.
//
// Wakeups are broadcast-only, which means waiters other than the intended
// one observe spurious wakeups. Callers must therefore re-check their
// predicate in a loop, exactly as with pthread condition variables, and
// must compute any deadline once before entering that loop so spurious
// wakeups cannot extend the effective timeout.
type condVar struct {
	l  sync.Locker
	ch chan struct{}
}

func newCondVar(l sync.Locker) *condVar {
	return &condVar{l: l, ch: make(chan struct{})}
}

// wait atomically releases the lock and suspends the caller until a
// broadcast arrives. The lock is reacquired before returning.
// Must be called with the lock held.
func (c *condVar) wait() {
	ch := c.ch
	c.l.Unlock()
	<-ch
	c.l.Lock()
}

// waitDeadline is wait bounded by an absolute deadline. It returns false
// if the deadline expired before a broadcast arrived, true otherwise.
// Must be called with the lock held.
func (c *condVar) waitDeadline(deadline time.Time) bool {
	ch := c.ch
	c.l.Unlock()

	signaled := false
	d := time.Until(deadline)
	if d <= 0 {
		// Deadline already passed: poll once so a broadcast that raced
		// ahead of the expiry is not lost.
		select {
		case <-ch:
			signaled = true
		default:
		}
	} else {
		t := time.NewTimer(d)
		select {
		case <-ch:
			signaled = true
		case <-t.C:
		}
		t.Stop()
	}

	c.l.Lock()
	return signaled
}

// broadcast wakes every current waiter. Must be called with the lock held.
func (c *condVar) broadcast() {
	close(c.ch)
	c.ch = make(chan struct{})
}

// Package osal provides a portable operating-system abstraction layer for
// concurrency primitives in Go.
//
// Application code written against this package uses one API for tasks,
// bounded queues, semaphores, mutexes and software timers, and runs
// unchanged on either of two backends:
//
//   - backend/threads builds blocking, timeouts and timer countdowns from
//     low-level condition waits, the way a preemptible multi-threaded host
//     is programmed.
//   - backend/rtos forwards each primitive to the host's native
//     equivalent and drives all timers from one shared scheduler loop,
//     the way a real-time kernel port is programmed.
//
// # Quick Start
//
// The package keeps a default runtime (the threads backend) so small
// programs need no explicit wiring:
//
//	q, err := osal.NewQueue(osal.QueueConfig{Name: "events", Capacity: 16, ItemSize: 8})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer q.Delete()
//
//	go func() {
//		item := make([]byte, 8)
//		for q.Receive(item, osal.Forever) == nil {
//			// handle item
//		}
//	}()
//
// Larger programs construct a backend explicitly and inject it:
//
//	rt := threads.New(threads.WithLogger(logger), threads.WithMetrics(metrics))
//	osal.SetDefault(rt)
//
// # Timeouts
//
// Every blocking operation takes a timeout argument classified into three
// wait modes: NoWait polls, Forever blocks unboundedly, and any positive
// duration blocks up to a deadline computed once at entry. A timed wait
// that expires reports a timeout code distinct from the immediate
// full/empty codes, so callers can tell "not now" from "not in time".
//
// # Errors
//
// Operations return plain errors backed by the core.Status enumeration
// and matched with errors.Is:
//
//	if err := sem.Take(osal.NoWait); errors.Is(err, core.ErrSemTimeout) {
//		// contended; back off
//	}
//
// # Deleting primitives
//
// Delete on any primitive wakes its blocked waiters, whose calls return
// core.ErrInvalidID. Destroying a primitive with waiters parked on it is
// defined behavior, never a crash.
package osal

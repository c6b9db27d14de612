package rtos

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/osal-go/osal/core"
)

// rsem forwards the semaphore contract to a token channel whose capacity
// is the ceiling. Give deposits a token, Take withdraws one; channel
// backpressure is the ceiling check.
type rsem struct {
	id     string
	name   string
	rt     *Runtime
	binary bool

	tokens chan struct{}

	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

func (rt *Runtime) newSemaphore(name string, initial, ceiling uint32, binary bool) (*rsem, error) {
	if err := core.CheckName(name); err != nil {
		return nil, err
	}
	if binary && initial > 1 {
		return nil, core.ErrInvalidSemValue
	}

	s := &rsem{
		id:     core.NewHandleID(),
		name:   name,
		rt:     rt,
		binary: binary,
		tokens: make(chan struct{}, ceiling),
		done:   make(chan struct{}),
	}
	for i := uint32(0); i < initial; i++ {
		s.tokens <- struct{}{}
	}

	rt.logger.Debug("semaphore created",
		core.F("name", name), core.F("id", s.id),
		core.F("initial", initial), core.F("ceiling", ceiling),
		core.F("binary", binary))
	return s, nil
}

func (s *rsem) ID() string   { return s.id }
func (s *rsem) Name() string { return s.name }

// Give deposits a token. A binary semaphore already holding its token
// saturates idempotently; a counting semaphore at its ceiling reports
// ErrSemFailure.
func (s *rsem) Give() error {
	if s.closed.Load() {
		return core.ErrInvalidID
	}

	select {
	case s.tokens <- struct{}{}:
		s.rt.metrics.RecordSemCount(s.name, s.Count())
		return nil
	default:
		if s.binary {
			return nil
		}
		return core.ErrSemFailure
	}
}

// Take withdraws a token, blocking per the timeout classification.
func (s *rsem) Take(timeout time.Duration) error {
	if s.closed.Load() {
		return core.ErrInvalidID
	}

	switch core.ClassifyTimeout(timeout) {
	case core.WaitNone:
		select {
		case <-s.done:
			return core.ErrInvalidID
		default:
		}
		select {
		case <-s.tokens:
			s.rt.metrics.RecordSemCount(s.name, s.Count())
			return nil
		default:
			return core.ErrSemTimeout
		}
	case core.WaitForever:
		select {
		case <-s.tokens:
			s.rt.metrics.RecordSemCount(s.name, s.Count())
			return nil
		case <-s.done:
			return core.ErrInvalidID
		}
	default:
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case <-s.tokens:
			s.rt.metrics.RecordSemCount(s.name, s.Count())
			return nil
		case <-t.C:
			return core.ErrSemTimeout
		case <-s.done:
			return core.ErrInvalidID
		}
	}
}

// GiveFromISR is a true non-suspending give.
func (s *rsem) GiveFromISR() error {
	return s.Give()
}

// TakeFromISR is a true non-suspending take; an unavailable semaphore
// reports ErrSemTimeout immediately.
func (s *rsem) TakeFromISR() error {
	return s.Take(core.NoWait)
}

func (s *rsem) Count() uint32 {
	if s.closed.Load() {
		return 0
	}
	return uint32(len(s.tokens))
}

// Delete destroys the semaphore, waking blocked takers with ErrInvalidID.
func (s *rsem) Delete() error {
	if s.closed.Swap(true) {
		return core.ErrInvalidID
	}
	s.closeOnce.Do(func() { close(s.done) })

	s.rt.logger.Debug("semaphore deleted", core.F("name", s.name), core.F("id", s.id))
	return nil
}

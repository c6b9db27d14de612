package threads

import (
	"sync"
	"time"

	"github.com/osal-go/osal/core"
)

// semaphore backs both the counting and the binary flavor. The binary
// flavor is counting with a ceiling of 1 and an idempotently saturating
// Give. Waiting reuses the same condition-wait idiom as the queue.
type semaphore struct {
	id     string
	name   string
	rt     *Runtime
	binary bool

	mu      sync.Mutex
	cond    *condVar
	count   uint32
	ceiling uint32
	closed  bool
}

func (rt *Runtime) newCountingSemaphore(name string, initial, max uint32) (*semaphore, error) {
	if err := core.CheckName(name); err != nil {
		return nil, err
	}
	// max of 0 means "use initial as the ceiling". That makes a
	// (0, 0) semaphore a counter that could never be given; reject it.
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

	s := &semaphore{
		id:      core.NewHandleID(),
		name:    name,
		rt:      rt,
		count:   initial,
		ceiling: ceiling,
	}
	s.cond = newCondVar(&s.mu)

	rt.logger.Debug("counting semaphore created",
		core.F("name", name), core.F("id", s.id),
		core.F("initial", initial), core.F("ceiling", ceiling))
	return s, nil
}

func (rt *Runtime) newBinarySemaphore(name string, initial uint32) (*semaphore, error) {
	if err := core.CheckName(name); err != nil {
		return nil, err
	}
	if initial > 1 {
		return nil, core.ErrInvalidSemValue
	}

	s := &semaphore{
		id:      core.NewHandleID(),
		name:    name,
		rt:      rt,
		binary:  true,
		count:   initial,
		ceiling: 1,
	}
	s.cond = newCondVar(&s.mu)

	rt.logger.Debug("binary semaphore created",
		core.F("name", name), core.F("id", s.id), core.F("initial", initial))
	return s, nil
}

func (s *semaphore) ID() string   { return s.id }
func (s *semaphore) Name() string { return s.name }

// Give increments the count and wakes takers. A binary semaphore already
// at 1 stays at 1 and reports success; a counting semaphore at its
// ceiling reports ErrSemFailure.
func (s *semaphore) Give() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrInvalidID
	}
	if s.count == s.ceiling {
		if s.binary {
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
		return core.ErrSemFailure
	}
	s.count++
	count := s.count
	s.cond.broadcast()
	s.mu.Unlock()

	s.rt.metrics.RecordSemCount(s.name, count)
	return nil
}

// Take decrements the count, blocking per the timeout classification.
// The deadline of a timed take is computed once at entry.
func (s *semaphore) Take(timeout time.Duration) error {
	mode := core.ClassifyTimeout(timeout)
	var deadline time.Time
	if mode == core.WaitTimed {
		deadline = time.Now().Add(timeout)
	}

	s.mu.Lock()
	for {
		if s.closed {
			s.mu.Unlock()
			return core.ErrInvalidID
		}
		if s.count > 0 {
			break
		}
		switch mode {
		case core.WaitNone:
			s.mu.Unlock()
			return core.ErrSemTimeout
		case core.WaitForever:
			s.cond.wait()
		case core.WaitTimed:
			if !s.cond.waitDeadline(deadline) {
				closed := s.closed
				s.mu.Unlock()
				if closed {
					return core.ErrInvalidID
				}
				return core.ErrSemTimeout
			}
		}
	}
	s.count--
	count := s.count
	s.mu.Unlock()

	s.rt.metrics.RecordSemCount(s.name, count)
	return nil
}

// GiveFromISR reports ErrNotImplemented: no interrupt context here.
func (s *semaphore) GiveFromISR() error {
	return core.ErrNotImplemented
}

// TakeFromISR reports ErrNotImplemented, matching GiveFromISR.
func (s *semaphore) TakeFromISR() error {
	return core.ErrNotImplemented
}

func (s *semaphore) Count() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return s.count
}

// Delete destroys the semaphore, waking blocked takers with ErrInvalidID.
func (s *semaphore) Delete() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrInvalidID
	}
	s.closed = true
	s.cond.broadcast()
	s.mu.Unlock()

	s.rt.logger.Debug("semaphore deleted", core.F("name", s.name), core.F("id", s.id))
	return nil
}

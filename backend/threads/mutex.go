package threads

import (
	"sync"

	"github.com/osal-go/osal/core"
)

// mutexPrim is the exclusive-ownership primitive. The host runtime's
// mutex does not enforce that only the acquirer unlocks, so the owning
// goroutine's identity is recorded at Take and checked at Give by the
// layer itself; the contract holds on every backend, not just the ones
// whose native primitive happens to enforce it.
type mutexPrim struct {
	id   string
	name string
	rt   *Runtime

	mu     sync.Mutex
	cond   *condVar
	locked bool
	owner  uint64
	closed bool
}

func (rt *Runtime) newMutex(name string) (*mutexPrim, error) {
	if err := core.CheckName(name); err != nil {
		return nil, err
	}

	m := &mutexPrim{
		id:   core.NewHandleID(),
		name: name,
		rt:   rt,
	}
	m.cond = newCondVar(&m.mu)

	rt.logger.Debug("mutex created", core.F("name", name), core.F("id", m.id))
	return m, nil
}

func (m *mutexPrim) ID() string   { return m.id }
func (m *mutexPrim) Name() string { return m.name }

// Take acquires the mutex, blocking until available. There is no timeout
// parameter; ownership is either obtained or the caller keeps waiting.
func (m *mutexPrim) Take() error {
	owner := currentOwner()

	m.mu.Lock()
	for {
		if m.closed {
			m.mu.Unlock()
			return core.ErrInvalidID
		}
		if !m.locked {
			break
		}
		m.cond.wait()
	}
	m.locked = true
	m.owner = owner
	m.mu.Unlock()
	return nil
}

// Give releases the mutex. Only the goroutine that took it may give it
// back; anything else is a semaphore failure, not a silent unlock.
func (m *mutexPrim) Give() error {
	owner := currentOwner()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return core.ErrInvalidID
	}
	if !m.locked || m.owner != owner {
		m.mu.Unlock()
		return core.ErrSemFailure
	}
	m.locked = false
	m.owner = 0
	m.cond.broadcast()
	m.mu.Unlock()
	return nil
}

// Delete destroys the mutex, waking blocked takers with ErrInvalidID.
func (m *mutexPrim) Delete() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return core.ErrInvalidID
	}
	m.closed = true
	m.cond.broadcast()
	m.mu.Unlock()

	m.rt.logger.Debug("mutex deleted", core.F("name", m.name), core.F("id", m.id))
	return nil
}

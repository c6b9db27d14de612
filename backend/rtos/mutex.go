package rtos

import (
	"sync"
	"sync/atomic"

	"github.com/osal-go/osal/core"
)

// rmutex forwards the mutex contract to a one-token channel and layers
// the single-owner check on top: the host primitive does not know who
// holds the token, so the owner's identity is recorded at Take and
// checked at Give, the same rule the threads backend applies.
type rmutex struct {
	id   string
	name string
	rt   *Runtime

	token chan struct{}
	owner atomic.Uint64

	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

func (rt *Runtime) newMutex(name string) (*rmutex, error) {
	if err := core.CheckName(name); err != nil {
		return nil, err
	}

	m := &rmutex{
		id:    core.NewHandleID(),
		name:  name,
		rt:    rt,
		token: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	m.token <- struct{}{}

	rt.logger.Debug("mutex created", core.F("name", name), core.F("id", m.id))
	return m, nil
}

func (m *rmutex) ID() string   { return m.id }
func (m *rmutex) Name() string { return m.name }

// Take acquires the mutex, blocking until available.
func (m *rmutex) Take() error {
	if m.closed.Load() {
		return core.ErrInvalidID
	}

	select {
	case <-m.token:
		m.owner.Store(currentOwner())
		return nil
	case <-m.done:
		return core.ErrInvalidID
	}
}

// Give releases the mutex; only the goroutine that took it may do so.
func (m *rmutex) Give() error {
	if m.closed.Load() {
		return core.ErrInvalidID
	}
	if m.owner.Load() != currentOwner() {
		return core.ErrSemFailure
	}
	m.owner.Store(0)
	m.token <- struct{}{}
	return nil
}

// Delete destroys the mutex, waking blocked takers with ErrInvalidID.
func (m *rmutex) Delete() error {
	if m.closed.Swap(true) {
		return core.ErrInvalidID
	}
	m.closeOnce.Do(func() { close(m.done) })

	m.rt.logger.Debug("mutex deleted", core.F("name", m.name), core.F("id", m.id))
	return nil
}

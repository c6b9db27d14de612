package rtos

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/osal-go/osal/core"
)

// rqueue forwards the bounded-queue contract to a buffered channel, the
// native fixed-capacity FIFO of this host. Items are copied into fresh
// slices on send and copied out on receive, so the queue never stores or
// exposes a reference to a caller's buffer.
type rqueue struct {
	id   string
	name string
	rt   *Runtime

	ch       chan []byte
	itemSize int
	capacity int

	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	sends    atomic.Uint64
	receives atomic.Uint64
	timeouts atomic.Uint64
}

func (rt *Runtime) newQueue(cfg core.QueueConfig) (*rqueue, error) {
	if err := core.CheckName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.Capacity < 1 || cfg.ItemSize < 1 {
		return nil, core.ErrQueueInvalidSize
	}
	if cfg.Buffer != nil {
		// Channel storage is owned by the host; a caller-supplied ring
		// buffer cannot be honored and must not be silently ignored.
		return nil, core.ErrOperationNotSupported
	}

	q := &rqueue{
		id:       core.NewHandleID(),
		name:     cfg.Name,
		rt:       rt,
		ch:       make(chan []byte, cfg.Capacity),
		itemSize: cfg.ItemSize,
		capacity: cfg.Capacity,
		done:     make(chan struct{}),
	}

	rt.logger.Debug("queue created",
		core.F("name", q.name), core.F("id", q.id),
		core.F("capacity", q.capacity), core.F("item_size", q.itemSize))
	return q, nil
}

func (q *rqueue) ID() string    { return q.id }
func (q *rqueue) Name() string  { return q.name }
func (q *rqueue) Capacity() int { return q.capacity }
func (q *rqueue) ItemSize() int { return q.itemSize }

func (q *rqueue) Send(item []byte, timeout time.Duration) error {
	err := q.send(item, timeout)
	q.record("send", err)
	return err
}

func (q *rqueue) send(item []byte, timeout time.Duration) error {
	if item == nil {
		return core.ErrInvalidPointer
	}
	if len(item) != q.itemSize {
		return core.ErrInvalidSize
	}
	if q.closed.Load() {
		return core.ErrInvalidID
	}

	cp := make([]byte, q.itemSize)
	copy(cp, item)

	switch core.ClassifyTimeout(timeout) {
	case core.WaitNone:
		select {
		case <-q.done:
			return core.ErrInvalidID
		default:
		}
		select {
		case q.ch <- cp:
			q.sends.Add(1)
			return nil
		default:
			return core.ErrQueueFull
		}
	case core.WaitForever:
		select {
		case q.ch <- cp:
			q.sends.Add(1)
			return nil
		case <-q.done:
			return core.ErrInvalidID
		}
	default:
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case q.ch <- cp:
			q.sends.Add(1)
			return nil
		case <-t.C:
			q.timeouts.Add(1)
			return core.ErrQueueTimeout
		case <-q.done:
			return core.ErrInvalidID
		}
	}
}

func (q *rqueue) Receive(buf []byte, timeout time.Duration) error {
	err := q.receive(buf, timeout)
	q.record("receive", err)
	return err
}

func (q *rqueue) receive(buf []byte, timeout time.Duration) error {
	if buf == nil {
		return core.ErrInvalidPointer
	}
	if len(buf) < q.itemSize {
		return core.ErrInvalidSize
	}
	if q.closed.Load() {
		return core.ErrInvalidID
	}

	switch core.ClassifyTimeout(timeout) {
	case core.WaitNone:
		select {
		case <-q.done:
			return core.ErrInvalidID
		default:
		}
		select {
		case item := <-q.ch:
			copy(buf[:q.itemSize], item)
			q.receives.Add(1)
			return nil
		default:
			return core.ErrQueueEmpty
		}
	case core.WaitForever:
		select {
		case item := <-q.ch:
			copy(buf[:q.itemSize], item)
			q.receives.Add(1)
			return nil
		case <-q.done:
			return core.ErrInvalidID
		}
	default:
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case item := <-q.ch:
			copy(buf[:q.itemSize], item)
			q.receives.Add(1)
			return nil
		case <-t.C:
			q.timeouts.Add(1)
			return core.ErrQueueTimeout
		case <-q.done:
			return core.ErrInvalidID
		}
	}
}

// SendFromISR is a true non-suspending send: no timeout parameter, never
// blocks, reports ErrQueueFull when no room is available.
func (q *rqueue) SendFromISR(item []byte) error {
	err := q.send(item, core.NoWait)
	q.record("send_isr", err)
	return err
}

// ReceiveFromISR is a true non-suspending receive.
func (q *rqueue) ReceiveFromISR(buf []byte) error {
	err := q.receive(buf, core.NoWait)
	q.record("receive_isr", err)
	return err
}

func (q *rqueue) Count() int {
	if q.closed.Load() {
		return 0
	}
	return len(q.ch)
}

func (q *rqueue) Stats() core.QueueStats {
	return core.QueueStats{
		Name:     q.name,
		Depth:    q.Count(),
		Capacity: q.capacity,
		ItemSize: q.itemSize,
		Sends:    q.sends.Load(),
		Receives: q.receives.Load(),
		Timeouts: q.timeouts.Load(),
		Closed:   q.closed.Load(),
	}
}

// Delete destroys the queue. Blocked senders and receivers are woken via
// the done channel and return ErrInvalidID; queued items are dropped.
func (q *rqueue) Delete() error {
	if q.closed.Swap(true) {
		return core.ErrInvalidID
	}
	q.closeOnce.Do(func() { close(q.done) })

	q.rt.logger.Debug("queue deleted", core.F("name", q.name), core.F("id", q.id))
	return nil
}

func (q *rqueue) record(op string, err error) {
	m := q.rt.metrics
	m.RecordQueueOutcome(q.name, op, core.OutcomeLabel(err))
	if err == nil {
		m.RecordQueueDepth(q.name, q.Count())
	}
}

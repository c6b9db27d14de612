package threads

import (
	"math"
	"sync"
	"time"

	"github.com/osal-go/osal/core"
)

// queue is the bounded blocking queue of the threads backend: a contiguous
// ring buffer protected by one mutex and two wait conditions. Two separate
// conditions ("room available", "item available") avoid waking senders
// when only a receiver's progress matters, and vice versa.
type queue struct {
	id   string
	name string
	rt   *Runtime

	mu       sync.Mutex
	notFull  *condVar
	notEmpty *condVar

	buf      []byte
	itemSize int
	capacity int
	head     int
	tail     int
	count    int
	closed   bool

	sends    uint64
	receives uint64
	timeouts uint64
}

func (rt *Runtime) newQueue(cfg core.QueueConfig) (*queue, error) {
	if err := core.CheckName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.Capacity < 1 || cfg.ItemSize < 1 {
		return nil, core.ErrQueueInvalidSize
	}
	if cfg.Capacity > math.MaxInt/cfg.ItemSize {
		return nil, core.ErrQueueInvalidSize
	}

	size := cfg.Capacity * cfg.ItemSize
	var buf []byte
	if cfg.Buffer != nil {
		// Caller-supplied storage must fit completely; creation never
		// falls back to allocating when a buffer was supplied.
		if len(cfg.Buffer) < size {
			return nil, core.ErrInvalidSize
		}
		buf = cfg.Buffer[:size]
	} else {
		buf = make([]byte, size)
	}

	q := &queue{
		id:       core.NewHandleID(),
		name:     cfg.Name,
		rt:       rt,
		buf:      buf,
		itemSize: cfg.ItemSize,
		capacity: cfg.Capacity,
	}
	q.notFull = newCondVar(&q.mu)
	q.notEmpty = newCondVar(&q.mu)

	rt.logger.Debug("queue created",
		core.F("name", q.name), core.F("id", q.id),
		core.F("capacity", q.capacity), core.F("item_size", q.itemSize))
	return q, nil
}

func (q *queue) ID() string    { return q.id }
func (q *queue) Name() string  { return q.name }
func (q *queue) Capacity() int { return q.capacity }
func (q *queue) ItemSize() int { return q.itemSize }

// Send copies item into the slot at tail. The deadline for a timed wait
// is computed once, before entering the wait loop; a spurious wakeup
// re-checks the predicate against the same deadline.
func (q *queue) Send(item []byte, timeout time.Duration) error {
	err := q.send(item, timeout)
	q.record("send", err)
	return err
}

func (q *queue) send(item []byte, timeout time.Duration) error {
	if item == nil {
		return core.ErrInvalidPointer
	}
	if len(item) != q.itemSize {
		return core.ErrInvalidSize
	}

	mode := core.ClassifyTimeout(timeout)
	var deadline time.Time
	if mode == core.WaitTimed {
		deadline = time.Now().Add(timeout)
	}

	q.mu.Lock()
	for {
		if q.closed {
			q.mu.Unlock()
			return core.ErrInvalidID
		}
		if q.count < q.capacity {
			break
		}
		switch mode {
		case core.WaitNone:
			q.mu.Unlock()
			return core.ErrQueueFull
		case core.WaitForever:
			q.notFull.wait()
		case core.WaitTimed:
			if !q.notFull.waitDeadline(deadline) {
				closed := q.closed
				q.timeouts++
				q.mu.Unlock()
				if closed {
					return core.ErrInvalidID
				}
				return core.ErrQueueTimeout
			}
		}
	}

	copy(q.buf[q.tail*q.itemSize:(q.tail+1)*q.itemSize], item)
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.sends++
	q.notEmpty.broadcast()
	q.mu.Unlock()
	return nil
}

// Receive copies the slot at head into buf and frees the slot.
func (q *queue) Receive(buf []byte, timeout time.Duration) error {
	err := q.receive(buf, timeout)
	q.record("receive", err)
	return err
}

func (q *queue) receive(buf []byte, timeout time.Duration) error {
	if buf == nil {
		return core.ErrInvalidPointer
	}
	if len(buf) < q.itemSize {
		return core.ErrInvalidSize
	}

	mode := core.ClassifyTimeout(timeout)
	var deadline time.Time
	if mode == core.WaitTimed {
		deadline = time.Now().Add(timeout)
	}

	q.mu.Lock()
	for {
		if q.closed {
			q.mu.Unlock()
			return core.ErrInvalidID
		}
		if q.count > 0 {
			break
		}
		switch mode {
		case core.WaitNone:
			q.mu.Unlock()
			return core.ErrQueueEmpty
		case core.WaitForever:
			q.notEmpty.wait()
		case core.WaitTimed:
			if !q.notEmpty.waitDeadline(deadline) {
				closed := q.closed
				q.timeouts++
				q.mu.Unlock()
				if closed {
					return core.ErrInvalidID
				}
				return core.ErrQueueTimeout
			}
		}
	}

	copy(buf[:q.itemSize], q.buf[q.head*q.itemSize:(q.head+1)*q.itemSize])
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.receives++
	q.notFull.broadcast()
	q.mu.Unlock()
	return nil
}

// SendFromISR reports ErrNotImplemented: this backend has no true
// interrupt context and does not guess at a locking strategy for one.
func (q *queue) SendFromISR(item []byte) error {
	return core.ErrNotImplemented
}

// ReceiveFromISR reports ErrNotImplemented, matching SendFromISR.
func (q *queue) ReceiveFromISR(buf []byte) error {
	return core.ErrNotImplemented
}

func (q *queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0
	}
	return q.count
}

func (q *queue) Stats() core.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return core.QueueStats{
		Name:     q.name,
		Depth:    q.count,
		Capacity: q.capacity,
		ItemSize: q.itemSize,
		Sends:    q.sends,
		Receives: q.receives,
		Timeouts: q.timeouts,
		Closed:   q.closed,
	}
}

// Delete destroys the queue. Blocked senders and receivers are woken
// first and their calls return ErrInvalidID; destroying a queue is never
// undefined behavior for its waiters.
func (q *queue) Delete() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return core.ErrInvalidID
	}
	q.closed = true
	q.count = 0
	q.buf = nil
	q.notFull.broadcast()
	q.notEmpty.broadcast()
	q.mu.Unlock()

	q.rt.logger.Debug("queue deleted", core.F("name", q.name), core.F("id", q.id))
	return nil
}

func (q *queue) record(op string, err error) {
	m := q.rt.metrics
	m.RecordQueueOutcome(q.name, op, core.OutcomeLabel(err))
	if err == nil {
		m.RecordQueueDepth(q.name, q.Count())
	}
}

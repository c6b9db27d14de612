package threads_test

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osal-go/osal/backend/threads"
	"github.com/osal-go/osal/core"
)

// =============================================================================
// Bounded Queue Tests
// =============================================================================

func newQueue(t *testing.T, capacity, itemSize int) core.Queue {
	t.Helper()
	rt := threads.New()
	q, err := rt.NewQueue(core.QueueConfig{Name: "q", Capacity: capacity, ItemSize: itemSize})
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	return q
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := newQueue(t, 3, 1)
	defer q.Delete()

	for _, b := range []byte{1, 2, 3} {
		if err := q.Send([]byte{b}, core.NoWait); err != nil {
			t.Fatalf("Send(%d) failed: %v", b, err)
		}
	}

	buf := make([]byte, 1)
	for _, want := range []byte{1, 2, 3} {
		if err := q.Receive(buf, core.NoWait); err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if buf[0] != want {
			t.Errorf("Expected %d, got %d", want, buf[0])
		}
	}
}

func TestQueue_NoWaitFullAndEmpty(t *testing.T) {
	q := newQueue(t, 1, 1)
	defer q.Delete()

	buf := make([]byte, 1)
	if err := q.Receive(buf, core.NoWait); !errors.Is(err, core.ErrQueueEmpty) {
		t.Errorf("Expected ErrQueueEmpty, got %v", err)
	}

	if err := q.Send([]byte{42}, core.NoWait); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := q.Send([]byte{43}, core.NoWait); !errors.Is(err, core.ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestQueue_TimedReceiveTimeout(t *testing.T) {
	q := newQueue(t, 1, 1)
	defer q.Delete()

	buf := make([]byte, 1)
	start := time.Now()
	err := q.Receive(buf, 50*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, core.ErrQueueTimeout) {
		t.Errorf("Expected ErrQueueTimeout, got %v", err)
	}
	// Approximately 50ms; never early, bounded lateness under load
	if elapsed < 45*time.Millisecond || elapsed > 250*time.Millisecond {
		t.Errorf("Expected ~50ms wait, got %v", elapsed)
	}
}

func TestQueue_TimedSendTimeout(t *testing.T) {
	q := newQueue(t, 1, 1)
	defer q.Delete()

	if err := q.Send([]byte{1}, core.NoWait); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := q.Send([]byte{2}, 50*time.Millisecond); !errors.Is(err, core.ErrQueueTimeout) {
		t.Errorf("Expected ErrQueueTimeout, got %v", err)
	}
}

func TestQueue_BlockedReceiverWokenBySend(t *testing.T) {
	q := newQueue(t, 1, 1)
	defer q.Delete()

	got := make(chan byte, 1)
	go func() {
		buf := make([]byte, 1)
		if err := q.Receive(buf, core.Forever); err == nil {
			got <- buf[0]
		}
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.Send([]byte{7}, core.NoWait); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case b := <-got:
		if b != 7 {
			t.Errorf("Expected 7, got %d", b)
		}
	case <-time.After(time.Second):
		t.Fatal("Receiver was not woken by the send")
	}
}

func TestQueue_CopySemantics(t *testing.T) {
	q := newQueue(t, 1, 4)
	defer q.Delete()

	item := []byte{1, 2, 3, 4}
	if err := q.Send(item, core.NoWait); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	// Mutating the source after send must not affect the queued copy.
	item[0] = 99

	buf := make([]byte, 4)
	if err := q.Receive(buf, core.NoWait); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if buf[0] != 1 {
		t.Errorf("Queued item aliased the sender's buffer: got %d", buf[0])
	}
}

func TestQueue_ItemSizeValidation(t *testing.T) {
	q := newQueue(t, 2, 4)
	defer q.Delete()

	if err := q.Send([]byte{1, 2}, core.NoWait); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize for short item, got %v", err)
	}
	if err := q.Send(nil, core.NoWait); !errors.Is(err, core.ErrInvalidPointer) {
		t.Errorf("Expected ErrInvalidPointer for nil item, got %v", err)
	}
	if err := q.Receive(make([]byte, 2), core.NoWait); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize for short buffer, got %v", err)
	}
	if err := q.Receive(nil, core.NoWait); !errors.Is(err, core.ErrInvalidPointer) {
		t.Errorf("Expected ErrInvalidPointer for nil buffer, got %v", err)
	}
}

func TestQueue_CreateValidation(t *testing.T) {
	rt := threads.New()

	if _, err := rt.NewQueue(core.QueueConfig{Capacity: 0, ItemSize: 1}); !errors.Is(err, core.ErrQueueInvalidSize) {
		t.Errorf("Expected ErrQueueInvalidSize for zero capacity, got %v", err)
	}
	if _, err := rt.NewQueue(core.QueueConfig{Capacity: 1, ItemSize: 0}); !errors.Is(err, core.ErrQueueInvalidSize) {
		t.Errorf("Expected ErrQueueInvalidSize for zero item size, got %v", err)
	}
	long := strings.Repeat("x", core.MaxNameLen+1)
	if _, err := rt.NewQueue(core.QueueConfig{Name: long, Capacity: 1, ItemSize: 1}); !errors.Is(err, core.ErrNameTooLong) {
		t.Errorf("Expected ErrNameTooLong, got %v", err)
	}
}

func TestQueue_CallerSuppliedBuffer(t *testing.T) {
	rt := threads.New()

	storage := make([]byte, 8)
	q, err := rt.NewQueue(core.QueueConfig{Name: "static", Capacity: 4, ItemSize: 2, Buffer: storage})
	if err != nil {
		t.Fatalf("NewQueue with buffer failed: %v", err)
	}
	defer q.Delete()

	if err := q.Send([]byte{0xAB, 0xCD}, core.NoWait); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	// The item lives in the caller's storage.
	if storage[0] != 0xAB || storage[1] != 0xCD {
		t.Error("Item was not stored in the supplied buffer")
	}
}

func TestQueue_CallerBufferTooSmall(t *testing.T) {
	rt := threads.New()

	_, err := rt.NewQueue(core.QueueConfig{Name: "static", Capacity: 4, ItemSize: 2, Buffer: make([]byte, 7)})
	if !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
}

func TestQueue_DeleteWakesBlockedReceivers(t *testing.T) {
	q := newQueue(t, 1, 1)

	var wg sync.WaitGroup
	var invalidID atomic.Int32

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 1)
			if err := q.Receive(buf, core.Forever); errors.Is(err, core.ErrInvalidID) {
				invalidID.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	if err := q.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Delete did not wake the blocked receivers")
	}
	if got := invalidID.Load(); got != 3 {
		t.Errorf("Expected 3 waiters with ErrInvalidID, got %d", got)
	}
}

func TestQueue_DeleteWakesBlockedSender(t *testing.T) {
	q := newQueue(t, 1, 1)

	if err := q.Send([]byte{1}, core.NoWait); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	result := make(chan error, 1)
	go func() {
		result <- q.Send([]byte{2}, core.Forever)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, core.ErrInvalidID) {
			t.Errorf("Expected ErrInvalidID, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Delete did not wake the blocked sender")
	}
}

func TestQueue_OperationsAfterDelete(t *testing.T) {
	q := newQueue(t, 1, 1)
	if err := q.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := q.Send([]byte{1}, core.NoWait); !errors.Is(err, core.ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID after delete, got %v", err)
	}
	if err := q.Receive(make([]byte, 1), core.NoWait); !errors.Is(err, core.ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID after delete, got %v", err)
	}
	if err := q.Delete(); !errors.Is(err, core.ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID on double delete, got %v", err)
	}
	if q.Count() != 0 {
		t.Errorf("Expected count 0 after delete, got %d", q.Count())
	}
}

func TestQueue_FromISRNotImplemented(t *testing.T) {
	q := newQueue(t, 1, 1)
	defer q.Delete()

	if err := q.SendFromISR([]byte{1}); !errors.Is(err, core.ErrNotImplemented) {
		t.Errorf("Expected ErrNotImplemented, got %v", err)
	}
	if err := q.ReceiveFromISR(make([]byte, 1)); !errors.Is(err, core.ErrNotImplemented) {
		t.Errorf("Expected ErrNotImplemented, got %v", err)
	}
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	q := newQueue(t, 8, 4)
	defer q.Delete()

	const producers = 4
	const perProducer = 50

	var sum atomic.Int64
	var wg sync.WaitGroup

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			item := make([]byte, 4)
			for i := 0; i < perProducer; i++ {
				v := uint32(base*perProducer + i)
				item[0] = byte(v)
				item[1] = byte(v >> 8)
				item[2] = byte(v >> 16)
				item[3] = byte(v >> 24)
				if err := q.Send(item, core.Forever); err != nil {
					t.Errorf("Send failed: %v", err)
					return
				}
			}
		}(p)
	}

	var cg sync.WaitGroup
	for c := 0; c < 2; c++ {
		cg.Add(1)
		go func() {
			defer cg.Done()
			buf := make([]byte, 4)
			for {
				if err := q.Receive(buf, 200*time.Millisecond); err != nil {
					return
				}
				v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
				sum.Add(int64(v))
			}
		}()
	}

	wg.Wait()
	cg.Wait()

	total := producers * perProducer
	want := int64(total*(total-1)) / 2
	if sum.Load() != want {
		t.Errorf("Expected item sum %d, got %d (lost or duplicated items)", want, sum.Load())
	}
}

func TestQueue_Stats(t *testing.T) {
	q := newQueue(t, 2, 1)
	defer q.Delete()

	q.Send([]byte{1}, core.NoWait)
	q.Send([]byte{2}, core.NoWait)
	q.Receive(make([]byte, 1), core.NoWait)
	q.Receive(make([]byte, 1), 10*time.Millisecond)
	q.Receive(make([]byte, 1), 10*time.Millisecond)

	st := q.Stats()
	if st.Sends != 2 {
		t.Errorf("Expected 2 sends, got %d", st.Sends)
	}
	if st.Receives != 2 {
		t.Errorf("Expected 2 receives, got %d", st.Receives)
	}
	if st.Timeouts != 1 {
		t.Errorf("Expected 1 timeout, got %d", st.Timeouts)
	}
	if st.Capacity != 2 || st.ItemSize != 1 {
		t.Errorf("Unexpected geometry: %+v", st)
	}
}

package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/osal-go/osal/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type queueStub struct {
	stats core.QueueStats
}

func (s queueStub) Stats() core.QueueStats { return s.stats }

type runtimeStub struct {
	stats core.RuntimeStats
}

func (s runtimeStub) Stats() core.RuntimeStats { return s.stats }

func TestSnapshotPoller_CollectsQueueAndRuntimeStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddQueue("events", queueStub{stats: core.QueueStats{
		Name:     "events",
		Sends:    12,
		Receives: 10,
		Timeouts: 2,
		Closed:   true,
	}})
	poller.AddRuntime("threads", runtimeStub{stats: core.RuntimeStats{
		Backend: "threads",
		Tasks:   5,
		Timers:  3,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		sends := testutil.ToFloat64(poller.queueSends.WithLabelValues("events"))
		tasks := testutil.ToFloat64(poller.runtimeTasks.WithLabelValues("threads"))
		return sends == 12 && tasks == 5
	})

	if got := testutil.ToFloat64(poller.queueClosed.WithLabelValues("events")); got != 1 {
		t.Fatalf("queue closed gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.runtimeTimers.WithLabelValues("threads")); got != 3 {
		t.Fatalf("runtime timers gauge = %v, want 3", got)
	}
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

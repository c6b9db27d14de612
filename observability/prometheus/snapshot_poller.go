package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/osal-go/osal/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// QueueSnapshotProvider provides current queue stats snapshots.
type QueueSnapshotProvider interface {
	Stats() core.QueueStats
}

// RuntimeSnapshotProvider provides current backend stats snapshots.
type RuntimeSnapshotProvider interface {
	Stats() core.RuntimeStats
}

// SnapshotPoller periodically exports queue/runtime Stats() snapshots into
// Prometheus gauges. It complements MetricsExporter: the exporter records
// hot-path events as they happen, the poller publishes the cumulative
// counters a primitive keeps about itself.
type SnapshotPoller struct {
	interval time.Duration

	queuesMu sync.RWMutex
	queues   map[string]QueueSnapshotProvider

	runtimesMu sync.RWMutex
	runtimes   map[string]RuntimeSnapshotProvider

	queueSends    *prom.GaugeVec
	queueReceives *prom.GaugeVec
	queueTimeouts *prom.GaugeVec
	queueClosed   *prom.GaugeVec

	runtimeTasks  *prom.GaugeVec
	runtimeTimers *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	queueSends := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "osal",
		Name:      "queue_sends_total",
		Help:      "Queue successful send count snapshot.",
	}, []string{"queue"})
	queueReceives := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "osal",
		Name:      "queue_receives_total",
		Help:      "Queue successful receive count snapshot.",
	}, []string{"queue"})
	queueTimeouts := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "osal",
		Name:      "queue_timeouts_total",
		Help:      "Queue timed-out operation count snapshot.",
	}, []string{"queue"})
	queueClosed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "osal",
		Name:      "queue_closed",
		Help:      "Queue closed state (1=deleted, 0=live).",
	}, []string{"queue"})

	runtimeTasks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "osal",
		Name:      "runtime_tasks",
		Help:      "Live tasks per backend.",
	}, []string{"backend"})
	runtimeTimers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "osal",
		Name:      "runtime_timers",
		Help:      "Live timers per backend.",
	}, []string{"backend"})

	var err error
	if queueSends, err = registerCollector(reg, queueSends); err != nil {
		return nil, err
	}
	if queueReceives, err = registerCollector(reg, queueReceives); err != nil {
		return nil, err
	}
	if queueTimeouts, err = registerCollector(reg, queueTimeouts); err != nil {
		return nil, err
	}
	if queueClosed, err = registerCollector(reg, queueClosed); err != nil {
		return nil, err
	}
	if runtimeTasks, err = registerCollector(reg, runtimeTasks); err != nil {
		return nil, err
	}
	if runtimeTimers, err = registerCollector(reg, runtimeTimers); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:      interval,
		queues:        make(map[string]QueueSnapshotProvider),
		runtimes:      make(map[string]RuntimeSnapshotProvider),
		queueSends:    queueSends,
		queueReceives: queueReceives,
		queueTimeouts: queueTimeouts,
		queueClosed:   queueClosed,
		runtimeTasks:  runtimeTasks,
		runtimeTimers: runtimeTimers,
	}, nil
}

// AddQueue adds or replaces a queue snapshot provider by name.
func (p *SnapshotPoller) AddQueue(name string, provider QueueSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "queue")
	p.queuesMu.Lock()
	p.queues[name] = provider
	p.queuesMu.Unlock()
}

// AddRuntime adds or replaces a backend snapshot provider by name.
func (p *SnapshotPoller) AddRuntime(name string, provider RuntimeSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "backend")
	p.runtimesMu.Lock()
	p.runtimes[name] = provider
	p.runtimesMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.queuesMu.RLock()
	for name, provider := range p.queues {
		stats := provider.Stats()
		p.queueSends.WithLabelValues(name).Set(float64(stats.Sends))
		p.queueReceives.WithLabelValues(name).Set(float64(stats.Receives))
		p.queueTimeouts.WithLabelValues(name).Set(float64(stats.Timeouts))
		if stats.Closed {
			p.queueClosed.WithLabelValues(name).Set(1)
		} else {
			p.queueClosed.WithLabelValues(name).Set(0)
		}
	}
	p.queuesMu.RUnlock()

	p.runtimesMu.RLock()
	for name, provider := range p.runtimes {
		stats := provider.Stats()
		p.runtimeTasks.WithLabelValues(name).Set(float64(stats.Tasks))
		p.runtimeTimers.WithLabelValues(name).Set(float64(stats.Timers))
	}
	p.runtimesMu.RUnlock()
}

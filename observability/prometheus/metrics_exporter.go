package prometheus

import (
	"errors"
	"fmt"

	"github.com/osal-go/osal/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	queueDepth      *prom.GaugeVec
	queueOpsTotal   *prom.CounterVec
	timerFiresTotal *prom.CounterVec
	semCount        *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "osal"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current queue depth.",
	}, []string{"queue"})
	queueOpsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "queue_operations_total",
		Help:      "Total queue operations by operation and outcome.",
	}, []string{"queue", "op", "outcome"})
	timerFiresVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "timer_fires_total",
		Help:      "Total timer expirations.",
	}, []string{"timer"})
	semCountVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "semaphore_count",
		Help:      "Current semaphore count.",
	}, []string{"semaphore"})

	var err error
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}
	if queueOpsVec, err = registerCollector(reg, queueOpsVec); err != nil {
		return nil, err
	}
	if timerFiresVec, err = registerCollector(reg, timerFiresVec); err != nil {
		return nil, err
	}
	if semCountVec, err = registerCollector(reg, semCountVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		queueDepth:      queueDepthVec,
		queueOpsTotal:   queueOpsVec,
		timerFiresTotal: timerFiresVec,
		semCount:        semCountVec,
	}, nil
}

// RecordQueueDepth records queue depth after a completed operation.
func (m *MetricsExporter) RecordQueueDepth(queueName string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(normalizeLabel(queueName, "unknown")).Set(float64(depth))
}

// RecordQueueOutcome records the outcome of a queue operation.
func (m *MetricsExporter) RecordQueueOutcome(queueName, op, outcome string) {
	if m == nil {
		return
	}
	m.queueOpsTotal.WithLabelValues(
		normalizeLabel(queueName, "unknown"),
		normalizeLabel(op, "unknown"),
		normalizeLabel(outcome, "unknown")).Inc()
}

// RecordTimerFire records one timer expiry.
func (m *MetricsExporter) RecordTimerFire(timerName string) {
	if m == nil {
		return
	}
	m.timerFiresTotal.WithLabelValues(normalizeLabel(timerName, "unknown")).Inc()
}

// RecordSemCount records the current semaphore count.
func (m *MetricsExporter) RecordSemCount(semName string, count uint32) {
	if m == nil {
		return
	}
	m.semCount.WithLabelValues(normalizeLabel(semName, "unknown")).Set(float64(count))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}

package core

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting primitive metrics.
// Implementations can send metrics to monitoring systems (Prometheus,
// StatsD, etc.).
//
// All methods are optional; implementations should handle nil receivers
// gracefully. Methods should be non-blocking and fast, since they run on
// the hot paths of send/receive and timer expiry.
type Metrics interface {
	// RecordQueueDepth records the current depth of a queue after a send
	// or receive completed.
	RecordQueueDepth(queueName string, depth int)

	// RecordQueueOutcome records the outcome of a queue send or receive.
	// op is "send" or "receive"; outcome is the status name ("success",
	// "queue full", "queue timeout", ...).
	RecordQueueOutcome(queueName, op, outcome string)

	// RecordTimerFire records one expiry of a timer.
	RecordTimerFire(timerName string)

	// RecordSemCount records the current count of a semaphore after a
	// give or take completed.
	RecordSemCount(semName string, count uint32)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// Used as the default when no metrics collection is configured.
type NilMetrics struct{}

func (m *NilMetrics) RecordQueueDepth(queueName string, depth int)         {}
func (m *NilMetrics) RecordQueueOutcome(queueName, op, outcome string)     {}
func (m *NilMetrics) RecordTimerFire(timerName string)                     {}
func (m *NilMetrics) RecordSemCount(semName string, count uint32)          {}

// OutcomeLabel maps an operation result to a metrics label value.
func OutcomeLabel(err error) string {
	if err == nil {
		return StatusOK.String()
	}
	if s, ok := err.(Status); ok {
		return s.String()
	}
	return "error"
}

// =============================================================================
// Stats snapshots
// =============================================================================

// QueueStats represents runtime observability state for a bounded queue.
type QueueStats struct {
	Name     string
	Depth    int
	Capacity int
	ItemSize int
	Sends    uint64
	Receives uint64
	Timeouts uint64
	Closed   bool
}

// TimerStats represents runtime observability state for a software timer.
type TimerStats struct {
	Name   string
	Active bool
	Fires  uint64
}

// RuntimeStats represents runtime observability state for a backend.
type RuntimeStats struct {
	Backend string
	Tasks   int
	Timers  int
}

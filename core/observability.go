package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting dispatch metrics.
// Implementations can send metrics to monitoring systems (Prometheus,
// StatsD, ...). Methods are called from dispatch contexts and must be fast
// and non-blocking.
type Metrics interface {
	// RecordJobOutcome records one job instance ending with the given
	// outcome. For skipped instances the duration is zero.
	RecordJobOutcome(task string, outcome Outcome, duration time.Duration)

	// RecordFrameOverrun records a frame whose total execution exceeded its
	// allotted length (cyclic strategy only).
	RecordFrameOverrun(frame int, overrun time.Duration)

	// RecordLogDropped records a log record dropped because the telemetry
	// buffer was full.
	RecordLogDropped(task string)

	// RecordHyperperiod records a completed hyperperiod with its miss and
	// skip counts.
	RecordHyperperiod(misses, skips int)
}

// NilMetrics is a no-op metrics implementation, the default when no metrics
// sink is provided.
type NilMetrics struct{}

func (NilMetrics) RecordJobOutcome(task string, outcome Outcome, duration time.Duration) {}
func (NilMetrics) RecordFrameOverrun(frame int, overrun time.Duration)                   {}
func (NilMetrics) RecordLogDropped(task string)                                          {}
func (NilMetrics) RecordHyperperiod(misses, skips int)                                   {}

// =============================================================================
// Stats snapshots
// =============================================================================

// DispatcherStats is a point-in-time snapshot of a running dispatcher,
// consumed by the status surface and the Prometheus snapshot poller.
type DispatcherStats struct {
	Strategy     string
	Running      bool
	Epoch        time.Time
	Frame        uint64 // absolute frame counter (cyclic strategy, else 0)
	Hyperperiods uint64
	Pending      int // records currently buffered in the telemetry log
	TotalMisses  uint64
	TotalSkips   uint64
	TotalDropped uint64
}

// LogStats is a snapshot of the telemetry log counters.
type LogStats struct {
	Pending      int
	Capacity     int
	Hyperperiods uint64
	TotalMisses  uint64
	TotalSkips   uint64
	TotalDropped uint64
}

package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLogCapacity bounds the number of records kept per hyperperiod.
// Sized to the worst-case instance count of the reference workload.
const DefaultLogCapacity = 50

// =============================================================================
// JobRecord
// =============================================================================

// JobRecord is the outcome of one job instance.
//
// Invariant: if Skipped is true, Start, Completion and Duration are zero and
// DeadlineMissed is true (a skip is itself a miss, since the work did not
// complete). Append enforces this.
type JobRecord struct {
	Task           string
	Frame          int // frame index within the hyperperiod; -1 under the preemptive strategy
	Release        time.Time
	Start          time.Time
	Completion     time.Time
	Duration       time.Duration
	Deadline       time.Time
	DeadlineMissed bool
	Skipped        bool
}

// Outcome derives the record's outcome classification.
func (r JobRecord) Outcome() Outcome {
	switch {
	case r.Skipped:
		return OutcomeSkipped
	case r.DeadlineMissed:
		return OutcomeMissed
	default:
		return OutcomeOK
	}
}

// HyperperiodSummary is the drained contents of the telemetry log for one
// hyperperiod, handed to the report sink.
type HyperperiodSummary struct {
	// ID correlates this summary across report sinks and the status surface.
	ID uuid.UUID

	// Hyperperiod is the 1-based index of the completed hyperperiod.
	Hyperperiod uint64

	// Epoch is the scheduler epoch all record times are measured against.
	Epoch time.Time

	// Records holds this hyperperiod's outcomes in dispatch order.
	Records []JobRecord

	// Per-hyperperiod counters, reset at every drain.
	Misses  int
	Skips   int
	Dropped int

	// Cumulative counters since dispatch started. Never decrease.
	TotalMisses  uint64
	TotalSkips   uint64
	TotalDropped uint64

	DrainedAt time.Time
}

// =============================================================================
// TelemetryLog
// =============================================================================

// TelemetryLog is a bounded buffer of per-instance records shared by all
// dispatch contexts and drained once per hyperperiod by the reporting
// context. A single mutex serializes access; it is held only for the
// read-modify-write of the buffer, never across job execution or report
// formatting.
//
// The buffer is not a ring: it fills once per hyperperiod and is reset at
// drain. Appends past capacity are dropped silently, trading completeness
// for bounded memory.
type TelemetryLog struct {
	mu       sync.Mutex
	records  []JobRecord
	capacity int

	// Per-hyperperiod counters, reset at drain.
	misses  int
	skips   int
	dropped int

	// Cumulative counters, monotonic.
	totalMisses  uint64
	totalSkips   uint64
	totalDropped uint64
	hyperperiods uint64
}

// NewTelemetryLog creates a log bounded to the given capacity.
// A non-positive capacity selects DefaultLogCapacity.
func NewTelemetryLog(capacity int) *TelemetryLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &TelemetryLog{
		records:  make([]JobRecord, 0, capacity),
		capacity: capacity,
	}
}

// Append records one job instance outcome. Skipped records are normalized to
// the skip invariant before counting. When the buffer is full the record is
// dropped; existing records and counts are untouched. Append reports whether
// the record was stored.
func (l *TelemetryLog) Append(rec JobRecord) bool {
	if rec.Skipped {
		rec.Start = time.Time{}
		rec.Completion = time.Time{}
		rec.Duration = 0
		rec.DeadlineMissed = true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.DeadlineMissed {
		l.misses++
		l.totalMisses++
	}
	if rec.Skipped {
		l.skips++
		l.totalSkips++
	}

	if len(l.records) >= l.capacity {
		l.dropped++
		l.totalDropped++
		return false
	}

	l.records = append(l.records, rec)
	return true
}

// Drain hands the buffered records and current counters to the caller, then
// resets the buffer and the per-hyperperiod counters. Cumulative totals are
// carried forward. The returned record slice is owned by the caller.
func (l *TelemetryLog) Drain() HyperperiodSummary {
	l.mu.Lock()

	records := make([]JobRecord, len(l.records))
	copy(records, l.records)

	l.hyperperiods++
	summary := HyperperiodSummary{
		ID:           uuid.New(),
		Hyperperiod:  l.hyperperiods,
		Records:      records,
		Misses:       l.misses,
		Skips:        l.skips,
		Dropped:      l.dropped,
		TotalMisses:  l.totalMisses,
		TotalSkips:   l.totalSkips,
		TotalDropped: l.totalDropped,
		DrainedAt:    time.Now(),
	}

	l.records = l.records[:0]
	l.misses = 0
	l.skips = 0
	l.dropped = 0

	l.mu.Unlock()
	return summary
}

// Len returns the number of records currently buffered.
func (l *TelemetryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Stats returns a snapshot of the log counters.
func (l *TelemetryLog) Stats() LogStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LogStats{
		Pending:      len(l.records),
		Capacity:     l.capacity,
		Hyperperiods: l.hyperperiods,
		TotalMisses:  l.totalMisses,
		TotalSkips:   l.totalSkips,
		TotalDropped: l.totalDropped,
	}
}

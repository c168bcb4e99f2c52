package core_test

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rtsched/go-rt-dispatch/core"
)

// Shared fakes for dispatcher tests.

// countingIndicator counts toggles.
type countingIndicator struct {
	count atomic.Int64
}

func (i *countingIndicator) Toggle() { i.count.Add(1) }

func (i *countingIndicator) Count() int64 { return i.count.Load() }

// captureReporter hands summaries to a channel, dropping when nobody reads.
type captureReporter struct {
	summaries chan core.HyperperiodSummary
}

func newCaptureReporter() *captureReporter {
	return &captureReporter{summaries: make(chan core.HyperperiodSummary, 8)}
}

func (r *captureReporter) Report(s core.HyperperiodSummary) {
	select {
	case r.summaries <- s:
	default:
	}
}

func (r *captureReporter) wait(timeout time.Duration) (core.HyperperiodSummary, bool) {
	select {
	case s := <-r.summaries:
		return s, true
	case <-time.After(timeout):
		return core.HyperperiodSummary{}, false
	}
}

// recordingMetrics captures metric calls for assertion.
type recordingMetrics struct {
	mu           sync.Mutex
	outcomes     map[string]map[core.Outcome]int
	overruns     map[int]int
	dropped      int
	hyperperiods int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		outcomes: make(map[string]map[core.Outcome]int),
		overruns: make(map[int]int),
	}
}

func (m *recordingMetrics) RecordJobOutcome(task string, outcome core.Outcome, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes[task] == nil {
		m.outcomes[task] = make(map[core.Outcome]int)
	}
	m.outcomes[task][outcome]++
}

func (m *recordingMetrics) RecordFrameOverrun(frame int, overrun time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overruns[frame]++
}

func (m *recordingMetrics) RecordLogDropped(task string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *recordingMetrics) RecordHyperperiod(misses, skips int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hyperperiods++
}

func (m *recordingMetrics) outcomeCount(task string, outcome core.Outcome) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[task][outcome]
}

func (m *recordingMetrics) overrunCount(frame int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overruns[frame]
}

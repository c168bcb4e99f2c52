package core

import (
	"time"
)

// JobResult carries the observed execution window of one job run.
// Start and Stop are taken by the job itself, immediately before and after
// the computation, so the recorded duration reflects the work alone and not
// any dispatch overhead around it.
type JobResult struct {
	Start time.Time
	Stop  time.Time
}

// Duration returns the observed execution time of the job run.
func (r JobResult) Duration() time.Duration {
	return r.Stop.Sub(r.Start)
}

// JobFunc is the unit of periodic work: a bounded, CPU-bound computation.
// It must not block on IO or locks; the dispatch strategies assume a job,
// once started, runs to completion.
type JobFunc func() JobResult

// =============================================================================
// TaskSpec: Per-task configuration for the preemptive strategy
// =============================================================================

// TaskSpec describes one periodic task. It is immutable after construction;
// the dispatcher never changes periods, deadlines or priorities at run time.
type TaskSpec struct {
	// Name identifies the task in log records and reports.
	Name string

	// Job is the computation dispatched once per period.
	Job JobFunc

	// Period is the task's activation period.
	Period time.Duration

	// Deadline is the relative deadline. Zero means implicit deadline
	// (Deadline = Period).
	Deadline time.Duration

	// Priority is the task's static priority, higher is more urgent.
	// Priorities are assigned externally by the rate-monotonic rule
	// (shorter period, higher priority); the dispatcher only consumes them.
	Priority int

	// CostSource, when non-nil, marks this task's job as variable-cost and
	// enables the admission gate: the estimated cost is read once per
	// instance immediately before dispatch, and the instance is skipped if
	// it cannot finish before its deadline.
	CostSource DurationSource
}

// RelativeDeadline returns the effective relative deadline of the task.
func (s TaskSpec) RelativeDeadline() time.Duration {
	if s.Deadline > 0 {
		return s.Deadline
	}
	return s.Period
}

// Hyperperiod returns the least common multiple of all task periods: the
// interval after which the whole schedule repeats.
func Hyperperiod(tasks []TaskSpec) time.Duration {
	var h time.Duration
	for _, t := range tasks {
		if t.Period <= 0 {
			continue
		}
		if h == 0 {
			h = t.Period
			continue
		}
		h = lcm(h, t.Period)
	}
	return h
}

func gcd(a, b time.Duration) time.Duration {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b time.Duration) time.Duration {
	return a / gcd(a, b) * b
}

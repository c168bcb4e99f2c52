package core

import (
	"time"
)

// spinMargin is shaved off every spin to leave headroom for the timestamp
// reads around the loop, mirroring the calibrated workloads this package
// models.
const spinMargin = 10 * time.Microsecond

// spinFor burns CPU until the given duration has elapsed. This is the
// modeled workload: a pure computation that never blocks or yields.
func spinFor(d time.Duration) {
	if d <= 0 {
		return
	}
	start := time.Now()
	for time.Since(start) < d {
	}
}

// NewSpinJob returns a job that busy-spins for the given cost.
// The cost is the declared execution time; the spin runs slightly shorter
// (by spinMargin) so the observed window stays within the declared budget.
func NewSpinJob(cost time.Duration) JobFunc {
	return func() JobResult {
		start := time.Now()
		spinFor(cost - spinMargin)
		return JobResult{Start: start, Stop: time.Now()}
	}
}

// NewVariableSpinJob returns a job whose cost is read from src on every run.
// This models a workload whose duration depends on an external input; the
// same source feeds the admission gate, which samples it independently just
// before dispatch.
func NewVariableSpinJob(src DurationSource) JobFunc {
	return func() JobResult {
		start := time.Now()
		spinFor(src.EstimatedCost() - spinMargin)
		return JobResult{Start: start, Stop: time.Now()}
	}
}

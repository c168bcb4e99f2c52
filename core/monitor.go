package core

import (
	"time"
)

// Outcome classifies how a job instance ended.
type Outcome int

const (
	// OutcomeOK: the job completed at or before its deadline.
	OutcomeOK Outcome = iota

	// OutcomeMissed: the job completed, but after its deadline.
	OutcomeMissed

	// OutcomeSkipped: the admission gate refused the job. A skip is itself
	// a miss, since the work did not complete.
	OutcomeSkipped
)

// String returns the report label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMissed:
		return "miss"
	case OutcomeSkipped:
		return "skip"
	default:
		return "unknown"
	}
}

// =============================================================================
// Release and deadline computation
// =============================================================================
//
// All theoretical timing derives from the scheduler epoch and a per-task
// instance counter, never from observed wake-up times. A late wake-up must
// not shift what "on time" means.

// ReleaseTime returns the theoretical release of the given instance:
// epoch + instance × period.
func ReleaseTime(epoch time.Time, instance uint64, period time.Duration) time.Time {
	return epoch.Add(time.Duration(instance) * period)
}

// AbsoluteDeadline returns the absolute deadline for a release:
// release + relative deadline.
func AbsoluteDeadline(release time.Time, deadline time.Duration) time.Time {
	return release.Add(deadline)
}

// Missed reports whether a completed job missed its deadline.
func Missed(completion, deadline time.Time) bool {
	return completion.After(deadline)
}

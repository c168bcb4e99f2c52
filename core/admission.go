package core

import (
	"time"
)

// =============================================================================
// DurationSource: External estimate of a variable-cost job's duration
// =============================================================================

// DurationSource supplies the estimated execution time of a variable-cost
// job. The estimate is read once per instance, immediately before the
// admission decision. Implementations must be safe for concurrent use when
// shared between the gate and the job itself.
type DurationSource interface {
	EstimatedCost() time.Duration
}

// FixedDurationSource always reports the same cost. Useful for tests and
// for degenerate configurations where the "variable" job is pinned.
type FixedDurationSource time.Duration

func (s FixedDurationSource) EstimatedCost() time.Duration {
	return time.Duration(s)
}

// SampleFunc reads one discrete sample from an external input, for example
// a bank of switches or an ADC channel. Values are expected in [0, max].
type SampleFunc func() int

// Default mapping: an 8-bit sample spans costs up to 8ms.
const (
	DefaultMaxSample = 255
	DefaultMaxCost   = 8 * time.Millisecond
)

// LinearDurationSource maps a sampled value linearly onto a bounded cost
// range: 0 maps to zero, MaxSample maps to MaxCost. Samples are clamped
// into range before mapping.
type LinearDurationSource struct {
	Sample    SampleFunc
	MaxSample int
	MaxCost   time.Duration
}

// NewLinearDurationSource builds a source with the default 8-bit-to-8ms
// mapping.
func NewLinearDurationSource(sample SampleFunc) *LinearDurationSource {
	return &LinearDurationSource{
		Sample:    sample,
		MaxSample: DefaultMaxSample,
		MaxCost:   DefaultMaxCost,
	}
}

func (s *LinearDurationSource) EstimatedCost() time.Duration {
	maxSample := s.MaxSample
	if maxSample <= 0 {
		maxSample = DefaultMaxSample
	}
	maxCost := s.MaxCost
	if maxCost <= 0 {
		maxCost = DefaultMaxCost
	}

	v := s.Sample()
	if v < 0 {
		v = 0
	}
	if v > maxSample {
		v = maxSample
	}

	return time.Duration(int64(maxCost) * int64(v) / int64(maxSample))
}

// =============================================================================
// Admission gate
// =============================================================================

// Admit reports whether a job with the given estimated cost can still finish
// before its deadline. A zero or negative remaining budget always refuses:
// an already-passed deadline is never worth starting against.
//
// This is a one-shot test made immediately before dispatching the one
// variable-cost job, not a general feasibility analyzer.
func Admit(now, deadline time.Time, estimate time.Duration) bool {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return false
	}
	return remaining >= estimate
}

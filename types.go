package rtdispatch

import (
	"time"

	"github.com/rtsched/go-rt-dispatch/core"
)

// Re-export commonly used types from the core package for convenience.
// This allows users to import only the rtdispatch package for most use cases.

// JobFunc is the unit of periodic work.
type JobFunc = core.JobFunc

// JobResult carries the observed execution window of one job run.
type JobResult = core.JobResult

// TaskSpec describes one periodic task of the preemptive strategy.
type TaskSpec = core.TaskSpec

// JobID identifies a job in frame tables.
type JobID = core.JobID

// JobEntry binds a JobID to its implementation.
type JobEntry = core.JobEntry

// JobTable maps job identifiers to implementations.
type JobTable = core.JobTable

// FrameSchedule is the static frame table driving the cyclic strategy.
type FrameSchedule = core.FrameSchedule

// DurationSource supplies the estimated cost of a variable-cost job.
type DurationSource = core.DurationSource

// Outcome classifies how a job instance ended.
type Outcome = core.Outcome

// JobRecord is the logged outcome of one job instance.
type JobRecord = core.JobRecord

// HyperperiodSummary is one hyperperiod's drained telemetry.
type HyperperiodSummary = core.HyperperiodSummary

// TelemetryLog is the bounded per-instance record buffer.
type TelemetryLog = core.TelemetryLog

// SummaryHistory retains recent hyperperiod summaries.
type SummaryHistory = core.SummaryHistory

// Reporter consumes hyperperiod summaries.
type Reporter = core.Reporter

// Indicator is an out-of-band status signal.
type Indicator = core.Indicator

// Logger is the structured logging interface used across the dispatchers.
type Logger = core.Logger

// Field is a key-value pair attached to a log message.
type Field = core.Field

// CyclicDispatcher is the time-triggered strategy.
type CyclicDispatcher = core.CyclicDispatcher

// CyclicOptions configures a CyclicDispatcher.
type CyclicOptions = core.CyclicOptions

// PreemptiveDispatcher is the priority-preemptive strategy.
type PreemptiveDispatcher = core.PreemptiveDispatcher

// PreemptiveOptions configures a PreemptiveDispatcher.
type PreemptiveOptions = core.PreemptiveOptions

// DispatcherStats is a point-in-time dispatcher snapshot.
type DispatcherStats = core.DispatcherStats

// Outcome constants
const (
	OutcomeOK      Outcome = core.OutcomeOK
	OutcomeMissed  Outcome = core.OutcomeMissed
	OutcomeSkipped Outcome = core.OutcomeSkipped
)

// DefaultLogCapacity bounds the telemetry log when no capacity is given.
const DefaultLogCapacity = core.DefaultLogCapacity

// Constructors and helpers, re-exported for single-import use.
var (
	F                       = core.F
	NewCyclicDispatcher     = core.NewCyclicDispatcher
	NewPreemptiveDispatcher = core.NewPreemptiveDispatcher
	NewFrameSchedule        = core.NewFrameSchedule
	NewTelemetryLog         = core.NewTelemetryLog
	NewSummaryHistory       = core.NewSummaryHistory
	NewSpinJob              = core.NewSpinJob
	NewVariableSpinJob      = core.NewVariableSpinJob
	NewLinearDurationSource = core.NewLinearDurationSource
	NewDefaultLogger        = core.NewDefaultLogger
	Hyperperiod             = core.Hyperperiod
)

// Admit reports whether a job with the given estimated cost can still finish
// before its deadline.
func Admit(now, deadline time.Time, estimate time.Duration) bool {
	return core.Admit(now, deadline, estimate)
}

package core

import (
	"time"
)

// instrumentation bundles the collaborators shared by both dispatch
// strategies: the telemetry log, the report sink, indicators, metrics and
// logging. Zero-value fields are replaced with no-op implementations so the
// dispatch path never nil-checks.
type instrumentation struct {
	log            *TelemetryLog
	reporter       Reporter
	history        *SummaryHistory
	logger         Logger
	metrics        Metrics
	missIndicator  Indicator
	hyperIndicator Indicator
}

func (in *instrumentation) applyDefaults() {
	if in.log == nil {
		in.log = NewTelemetryLog(0)
	}
	if in.reporter == nil {
		in.reporter = NoOpReporter{}
	}
	if in.logger == nil {
		in.logger = NewNoOpLogger()
	}
	if in.metrics == nil {
		in.metrics = NilMetrics{}
	}
	if in.missIndicator == nil {
		in.missIndicator = NoOpIndicator{}
	}
	if in.hyperIndicator == nil {
		in.hyperIndicator = NoOpIndicator{}
	}
}

// dispatchJob runs one job instance against its theoretical release and
// absolute deadline: gate if variable-cost, execute or skip, classify, log.
// frame is the minor frame index under the cyclic strategy, -1 otherwise.
func (in *instrumentation) dispatchJob(name string, job JobFunc, src DurationSource, frame int, release, deadline time.Time) Outcome {
	if src != nil {
		estimate := src.EstimatedCost()
		if !Admit(time.Now(), deadline, estimate) {
			if stored := in.log.Append(JobRecord{
				Task:     name,
				Frame:    frame,
				Release:  release,
				Deadline: deadline,
				Skipped:  true,
			}); !stored {
				in.metrics.RecordLogDropped(name)
			}
			in.missIndicator.Toggle()
			in.metrics.RecordJobOutcome(name, OutcomeSkipped, 0)
			in.logger.Warn("job skipped, cannot finish before deadline",
				F("task", name),
				F("estimate", estimate),
				F("deadline", deadline))
			return OutcomeSkipped
		}
	}

	result := job()
	missed := Missed(result.Stop, deadline)

	if stored := in.log.Append(JobRecord{
		Task:           name,
		Frame:          frame,
		Release:        release,
		Start:          result.Start,
		Completion:     result.Stop,
		Duration:       result.Duration(),
		Deadline:       deadline,
		DeadlineMissed: missed,
	}); !stored {
		in.metrics.RecordLogDropped(name)
	}

	outcome := OutcomeOK
	if missed {
		outcome = OutcomeMissed
		in.missIndicator.Toggle()
	}
	in.metrics.RecordJobOutcome(name, outcome, result.Duration())
	return outcome
}

// completeHyperperiod drains the log and hands the summary to the report
// sink. The hyperperiod indicator is toggled first, matching the reference
// behavior of signaling the period boundary before the (slow) report runs.
func (in *instrumentation) completeHyperperiod(epoch time.Time) HyperperiodSummary {
	in.hyperIndicator.Toggle()

	summary := in.log.Drain()
	summary.Epoch = epoch

	if in.history != nil {
		in.history.Add(summary)
	}
	in.metrics.RecordHyperperiod(summary.Misses, summary.Skips)
	in.reporter.Report(summary)
	return summary
}

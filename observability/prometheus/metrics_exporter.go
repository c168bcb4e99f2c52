// Package prometheus exports dispatch metrics to Prometheus.
package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rtsched/go-rt-dispatch/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	jobOutcomesTotal    *prom.CounterVec
	jobExecutionSeconds *prom.HistogramVec
	frameOverrunsTotal  *prom.CounterVec
	logDroppedTotal     *prom.CounterVec
	hyperperiodsTotal   prom.Counter
	hyperperiodMisses   prom.Gauge
	hyperperiodSkips    prom.Gauge
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "rtdispatch"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		// Job costs sit in the low-millisecond range.
		buckets = []float64{.0005, .001, .002, .004, .008, .016, .032, .064}
	}

	outcomesVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "job_outcomes_total",
		Help:      "Job instances by outcome (ok, miss, skip).",
	}, []string{"task", "outcome"})
	executionVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "job_execution_seconds",
		Help:      "Observed job execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"task"})
	overrunsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "frame_overruns_total",
		Help:      "Frames whose execution exceeded the frame length.",
	}, []string{"frame"})
	droppedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "log_records_dropped_total",
		Help:      "Telemetry records dropped because the log was full.",
	}, []string{"task"})
	hyperperiods := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "hyperperiods_total",
		Help:      "Completed hyperperiods.",
	})
	misses := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "hyperperiod_misses",
		Help:      "Deadline misses in the last completed hyperperiod.",
	})
	skips := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "hyperperiod_skips",
		Help:      "Admission skips in the last completed hyperperiod.",
	})

	var err error
	if outcomesVec, err = registerCollector(reg, outcomesVec); err != nil {
		return nil, err
	}
	if executionVec, err = registerCollector(reg, executionVec); err != nil {
		return nil, err
	}
	if overrunsVec, err = registerCollector(reg, overrunsVec); err != nil {
		return nil, err
	}
	if droppedVec, err = registerCollector(reg, droppedVec); err != nil {
		return nil, err
	}
	if hyperperiods, err = registerCollector(reg, hyperperiods); err != nil {
		return nil, err
	}
	if misses, err = registerCollector(reg, misses); err != nil {
		return nil, err
	}
	if skips, err = registerCollector(reg, skips); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		jobOutcomesTotal:    outcomesVec,
		jobExecutionSeconds: executionVec,
		frameOverrunsTotal:  overrunsVec,
		logDroppedTotal:     droppedVec,
		hyperperiodsTotal:   hyperperiods,
		hyperperiodMisses:   misses,
		hyperperiodSkips:    skips,
	}, nil
}

// RecordJobOutcome records one job instance outcome. Skipped instances have
// no execution window, so no duration is observed for them.
func (m *MetricsExporter) RecordJobOutcome(task string, outcome core.Outcome, duration time.Duration) {
	if m == nil {
		return
	}
	task = normalizeLabel(task, "unknown")
	m.jobOutcomesTotal.WithLabelValues(task, outcome.String()).Inc()
	if outcome != core.OutcomeSkipped {
		m.jobExecutionSeconds.WithLabelValues(task).Observe(duration.Seconds())
	}
}

// RecordFrameOverrun records a frame budget overrun.
func (m *MetricsExporter) RecordFrameOverrun(frame int, overrun time.Duration) {
	if m == nil {
		return
	}
	m.frameOverrunsTotal.WithLabelValues(strconv.Itoa(frame)).Inc()
}

// RecordLogDropped records a dropped telemetry record.
func (m *MetricsExporter) RecordLogDropped(task string) {
	if m == nil {
		return
	}
	m.logDroppedTotal.WithLabelValues(normalizeLabel(task, "unknown")).Inc()
}

// RecordHyperperiod records a completed hyperperiod.
func (m *MetricsExporter) RecordHyperperiod(misses, skips int) {
	if m == nil {
		return
	}
	m.hyperperiodsTotal.Inc()
	m.hyperperiodMisses.Set(float64(misses))
	m.hyperperiodSkips.Set(float64(skips))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}

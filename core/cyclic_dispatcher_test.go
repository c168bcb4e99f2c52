package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/rtsched/go-rt-dispatch/core"
)

func instantJob() core.JobResult {
	now := time.Now()
	return core.JobResult{Start: now, Stop: now}
}

func orderedTable(order *[]string) core.JobTable {
	record := func(name string) core.JobFunc {
		return func() core.JobResult {
			*order = append(*order, name)
			return instantJob()
		}
	}
	return core.JobTable{
		"A": {Name: "Task_A", Fn: record("Task_A")},
		"B": {Name: "Task_B", Fn: record("Task_B")},
		"D": {Name: "Task_D", Fn: record("Task_D")},
	}
}

func TestCyclicDispatcher_StepRunsFrameJobsInTableOrder(t *testing.T) {
	var order []string
	schedule, err := core.NewFrameSchedule(5*time.Millisecond, [][]core.JobID{
		{"B", "A", "D"},
		{"B"},
	}, orderedTable(&order))
	if err != nil {
		t.Fatal(err)
	}

	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{})
	if err != nil {
		t.Fatal(err)
	}

	// Drive frames directly, without the ticker.
	d.Begin(time.Now())
	d.Step()
	d.Step()

	want := []string{"Task_B", "Task_A", "Task_D", "Task_B"}
	if len(order) != len(want) {
		t.Fatalf("executed %d jobs, want %d: %v", len(order), len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order %v, want %v", order, want)
		}
	}
}

func TestCyclicDispatcher_AdmissionGateSkipsUnfinishableJob(t *testing.T) {
	// One frame of 5ms; the gated job claims 6ms, which can never fit the
	// remaining frame budget.
	table := core.JobTable{
		"C": {
			Name:       "Task_C",
			Fn:         instantJob,
			CostSource: core.FixedDurationSource(6 * time.Millisecond),
		},
	}
	schedule, err := core.NewFrameSchedule(5*time.Millisecond, [][]core.JobID{{"C"}}, table)
	if err != nil {
		t.Fatal(err)
	}

	reporter := newCaptureReporter()
	missLED := &countingIndicator{}
	metrics := newRecordingMetrics()
	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{
		Reporter:      reporter,
		MissIndicator: missLED,
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatal(err)
	}

	d.Begin(time.Now())
	d.Step() // single-frame table: the step also completes the hyperperiod

	summary, ok := reporter.wait(time.Second)
	if !ok {
		t.Fatal("no hyperperiod summary reported")
	}
	if len(summary.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(summary.Records))
	}

	rec := summary.Records[0]
	if !rec.Skipped {
		t.Error("gated job must be skipped")
	}
	if !rec.DeadlineMissed {
		t.Error("a skip counts as a deadline miss")
	}
	if !rec.Start.IsZero() || !rec.Completion.IsZero() || rec.Duration != 0 {
		t.Error("skipped record must carry zero execution times")
	}
	if summary.Skips != 1 || summary.Misses != 1 {
		t.Errorf("summary counts = %d skips / %d misses, want 1 / 1", summary.Skips, summary.Misses)
	}
	if missLED.Count() == 0 {
		t.Error("miss indicator must toggle on a skip")
	}
	if metrics.outcomeCount("Task_C", core.OutcomeSkipped) != 1 {
		t.Error("skip outcome not recorded in metrics")
	}
}

func TestCyclicDispatcher_LateCompletionFlaggedAsMiss(t *testing.T) {
	table := core.JobTable{"A": {Name: "Task_A", Fn: instantJob}}
	schedule, err := core.NewFrameSchedule(5*time.Millisecond, [][]core.JobID{{"A"}}, table)
	if err != nil {
		t.Fatal(err)
	}

	reporter := newCaptureReporter()
	metrics := newRecordingMetrics()
	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{
		Reporter: reporter,
		Metrics:  metrics,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Epoch fixed one second in the past: the frame deadline has long gone,
	// so even an instant job completes late. Deadlines derive from the epoch,
	// never from when the frame actually ran.
	d.Begin(time.Now().Add(-time.Second))
	d.Step()

	summary, ok := reporter.wait(time.Second)
	if !ok {
		t.Fatal("no hyperperiod summary reported")
	}
	rec := summary.Records[0]
	if rec.Skipped {
		t.Fatal("ungated job must execute, not skip")
	}
	if !rec.DeadlineMissed {
		t.Error("late completion must be flagged as a miss")
	}
	if metrics.outcomeCount("Task_A", core.OutcomeMissed) != 1 {
		t.Error("miss outcome not recorded in metrics")
	}
}

func TestCyclicDispatcher_FrameOverrunFlaggedNotAborted(t *testing.T) {
	slowJob := func() core.JobResult {
		start := time.Now()
		time.Sleep(5 * time.Millisecond)
		return core.JobResult{Start: start, Stop: time.Now()}
	}
	table := core.JobTable{"E": {Name: "Task_E", Fn: slowJob}}
	schedule, err := core.NewFrameSchedule(time.Millisecond, [][]core.JobID{{"E"}, {"E"}}, table)
	if err != nil {
		t.Fatal(err)
	}

	metrics := newRecordingMetrics()
	missLED := &countingIndicator{}
	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{
		Metrics:       metrics,
		MissIndicator: missLED,
	})
	if err != nil {
		t.Fatal(err)
	}

	d.Begin(time.Now())
	d.Step()

	if metrics.overrunCount(0) != 1 {
		t.Error("frame 0 overrun not recorded")
	}
	if missLED.Count() == 0 {
		t.Error("miss indicator must toggle on an overrun")
	}
	// The overrunning frame still ran to completion and advanced the table.
	if got := d.Stats().Frame; got != 1 {
		t.Errorf("frame counter = %d, want 1", got)
	}
}

func TestCyclicDispatcher_HyperperiodWrapDrainsLog(t *testing.T) {
	table := core.JobTable{"A": {Name: "Task_A", Fn: instantJob}}
	schedule, err := core.NewFrameSchedule(5*time.Millisecond, [][]core.JobID{{"A"}, {"A"}}, table)
	if err != nil {
		t.Fatal(err)
	}

	reporter := newCaptureReporter()
	history := core.NewSummaryHistory(4)
	hyperLED := &countingIndicator{}
	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{
		Reporter:             reporter,
		History:              history,
		HyperperiodIndicator: hyperLED,
	})
	if err != nil {
		t.Fatal(err)
	}

	epoch := time.Now()
	d.Begin(epoch)
	d.Step()

	// Mid-hyperperiod: nothing drained yet.
	if d.Stats().Pending != 1 {
		t.Errorf("pending after one frame = %d, want 1", d.Stats().Pending)
	}
	select {
	case <-reporter.summaries:
		t.Fatal("summary reported before the hyperperiod completed")
	default:
	}

	d.Step()

	summary, ok := reporter.wait(time.Second)
	if !ok {
		t.Fatal("no summary after hyperperiod wrap")
	}
	if summary.Hyperperiod != 1 {
		t.Errorf("hyperperiod index = %d, want 1", summary.Hyperperiod)
	}
	if !summary.Epoch.Equal(epoch) {
		t.Error("summary must carry the scheduler epoch")
	}
	if len(summary.Records) != 2 {
		t.Errorf("summary holds %d records, want 2", len(summary.Records))
	}
	if hyperLED.Count() != 1 {
		t.Errorf("hyperperiod indicator toggled %d times, want 1", hyperLED.Count())
	}
	if last, ok := history.Last(); !ok || last.Hyperperiod != 1 {
		t.Error("summary not stored in history")
	}
	if d.Stats().Pending != 0 {
		t.Errorf("pending after drain = %d, want 0", d.Stats().Pending)
	}
}

func TestCyclicDispatcher_TickerKeepsFramesOnEpochTimeline(t *testing.T) {
	// Under the real ticker, frame k must start executing at its own frame
	// start, not one frame length later (which is exactly its deadline).
	// Instant jobs on a feasible schedule therefore never miss.
	table := core.JobTable{"A": {Name: "Task_A", Fn: instantJob}}
	schedule, err := core.NewFrameSchedule(20*time.Millisecond, [][]core.JobID{{"A"}, {"A"}}, table)
	if err != nil {
		t.Fatal(err)
	}

	reporter := newCaptureReporter()
	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{Reporter: reporter})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	summary, ok := reporter.wait(2 * time.Second)
	if !ok {
		t.Fatal("no hyperperiod summary under the ticker")
	}
	if len(summary.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(summary.Records))
	}
	for _, rec := range summary.Records {
		if rec.Skipped {
			t.Errorf("frame %d: instant job skipped", rec.Frame)
		}
		if rec.DeadlineMissed {
			t.Errorf("frame %d: instant job flagged as deadline miss (started %v after release)",
				rec.Frame, rec.Start.Sub(rec.Release))
		}
		if gap := rec.Start.Sub(rec.Release); gap >= schedule.FrameLength() {
			t.Errorf("frame %d started %v after its frame start, a full frame late", rec.Frame, gap)
		}
	}
	if summary.Misses != 0 {
		t.Errorf("feasible schedule reported %d misses", summary.Misses)
	}
}

func TestCyclicDispatcher_TickerRunsFeasibleFrameAndSkipsGatedJob(t *testing.T) {
	// One 5ms frame carrying 1ms and 2ms jobs ahead of a gated job claiming
	// 6ms: the fixed jobs complete on time, the gated job can never fit the
	// remaining frame budget and is skipped.
	table := core.JobTable{
		"A": {Name: "Task_A", Fn: core.NewSpinJob(time.Millisecond)},
		"D": {Name: "Task_D", Fn: core.NewSpinJob(2 * time.Millisecond)},
		"C": {
			Name:       "Task_C",
			Fn:         instantJob,
			CostSource: core.FixedDurationSource(6 * time.Millisecond),
		},
	}
	schedule, err := core.NewFrameSchedule(5*time.Millisecond, [][]core.JobID{
		{"A", "D", "C"},
		{"A"},
	}, table)
	if err != nil {
		t.Fatal(err)
	}

	reporter := newCaptureReporter()
	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{Reporter: reporter})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	summary, ok := reporter.wait(2 * time.Second)
	if !ok {
		t.Fatal("no hyperperiod summary under the ticker")
	}

	byTask := map[string][]core.JobRecord{}
	for _, rec := range summary.Records {
		byTask[rec.Task] = append(byTask[rec.Task], rec)
	}

	for _, task := range []string{"Task_A", "Task_D"} {
		for _, rec := range byTask[task] {
			if rec.Skipped || rec.DeadlineMissed {
				t.Errorf("%s in frame %d: outcome %v, want ok", task, rec.Frame, rec.Outcome())
			}
		}
	}
	if len(byTask["Task_C"]) != 1 {
		t.Fatalf("Task_C recorded %d times, want 1", len(byTask["Task_C"]))
	}
	if rec := byTask["Task_C"][0]; !rec.Skipped || !rec.DeadlineMissed {
		t.Errorf("Task_C outcome %v, want skip", rec.Outcome())
	}
	if summary.Skips != 1 || summary.Misses != 1 {
		t.Errorf("summary counts = %d skips / %d misses, want 1 / 1", summary.Skips, summary.Misses)
	}
}

func TestCyclicDispatcher_StartStop(t *testing.T) {
	table := core.JobTable{"A": {Name: "Task_A", Fn: instantJob}}
	schedule, err := core.NewFrameSchedule(5*time.Millisecond, [][]core.JobID{{"A"}, {"A"}}, table)
	if err != nil {
		t.Fatal(err)
	}

	reporter := newCaptureReporter()
	d, err := core.NewCyclicDispatcher(schedule, core.CyclicOptions{Reporter: reporter})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Error("second Start while running must be rejected")
	}

	if _, ok := reporter.wait(2 * time.Second); !ok {
		t.Fatal("no hyperperiod completed under the ticker")
	}

	d.Stop()
	d.Stop() // idempotent

	if d.Stats().Running {
		t.Error("stats must report stopped after Stop")
	}
	if d.Stats().Hyperperiods == 0 {
		t.Error("at least one hyperperiod should have completed")
	}
}

// Package rtdispatch provides a deadline-aware dispatch engine for periodic
// real-time workloads in Go.
//
// The engine offers two dispatch strategies over the same instrumentation
// pipeline. The preemptive strategy runs one execution context per periodic
// task and relies on the runtime to preempt lower-priority work; the cyclic
// strategy runs a single tick loop over a static frame table. Either way,
// every job instance is checked against its theoretical deadline, recorded in
// a bounded telemetry log, and reported once per hyperperiod.
//
// # Quick Start
//
// Dispatch the reference workload on the cyclic strategy:
//
//	doc := config.DefaultDocument()
//	schedule, _ := doc.FrameSchedule(config.DefaultJobTable(nil))
//
//	dispatcher, _ := rtdispatch.NewCyclicDispatcher(schedule, rtdispatch.CyclicOptions{
//		Reporter: report.NewConsoleReporter(nil),
//	})
//	dispatcher.Start(context.Background())
//	defer dispatcher.Stop()
//
// Or register a rate-monotonic task set on the preemptive strategy:
//
//	tasks, _ := doc.TaskSet(config.DefaultJobTable(nil))
//	dispatcher, _ := rtdispatch.NewPreemptiveDispatcher(tasks, rtdispatch.PreemptiveOptions{})
//
// # Key Concepts
//
// Epoch: the single absolute reference instant. Every release, deadline and
// frame start is epoch + k x period, computed from instance counters, never
// from observed wake-up times, so scheduling jitter cannot drift the
// theoretical timeline.
//
// Admission gate: a task carrying a DurationSource is variable-cost. Its
// estimated cost is read immediately before each dispatch, and an instance
// that cannot finish before its deadline is skipped instead of started.
// A skip counts as a deadline miss.
//
// TelemetryLog: a bounded per-instance record buffer shared by all dispatch
// contexts, drained once per hyperperiod into a HyperperiodSummary that goes
// to the configured Reporter.
//
// # Observability
//
// Subpackages wire the engine into a wider stack: report renders console
// tables, observability/prometheus exports metrics, status serves an HTTP
// surface over recent summaries, and indicator/hue blinks a networked lamp
// on misses.
package rtdispatch

package core

// Reporter consumes one hyperperiod's drained log records and produces a
// report. Formatting is entirely the sink's concern; the engine only hands
// over the data, after the log lock has been released.
type Reporter interface {
	Report(summary HyperperiodSummary)
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(summary HyperperiodSummary)

func (f ReporterFunc) Report(summary HyperperiodSummary) { f(summary) }

// NoOpReporter discards summaries. The degenerate "no miss tracking"
// configuration wires this in place of a real sink.
type NoOpReporter struct{}

func (NoOpReporter) Report(summary HyperperiodSummary) {}

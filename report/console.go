// Package report contains report sinks for drained hyperperiod summaries.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rtsched/go-rt-dispatch/core"
)

// ConsoleReporter renders one hyperperiod summary as a fixed-width table,
// with all instants printed as microseconds since the scheduler epoch.
// It is safe for concurrent use, though in practice only the reporting
// context calls it.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter writes to the given writer; nil selects stdout.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

var _ core.Reporter = (*ConsoleReporter)(nil)

// Report implements core.Reporter.
func (r *ConsoleReporter) Report(s core.HyperperiodSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.out
	fmt.Fprintf(w, "\n========== Hyperperiod %d Report ==========\n", s.Hyperperiod)
	fmt.Fprintln(w, "Frame | Task   | Release    | Start      | Complete   | Deadline   | Exec Time | Status")
	fmt.Fprintln(w, "------+--------+------------+------------+------------+------------+-----------+---------")

	for _, rec := range s.Records {
		fmt.Fprintf(w, " %s | %-6s | %10d | %10d | %10d | %10d | %6d us | %s\n",
			frameLabel(rec.Frame),
			rec.Task,
			micros(s.Epoch, rec.Release),
			micros(s.Epoch, rec.Start),
			micros(s.Epoch, rec.Completion),
			micros(s.Epoch, rec.Deadline),
			rec.Duration.Microseconds(),
			statusLabel(rec))
	}

	fmt.Fprintln(w, "========================================================================================")
	fmt.Fprintf(w, "Total jobs logged: %d\n", len(s.Records))
	if s.Dropped > 0 {
		fmt.Fprintf(w, "Records dropped (log full): %d\n", s.Dropped)
	}
	fmt.Fprintf(w, "Deadline misses (this hyperperiod): %d\n", s.Misses)
	fmt.Fprintf(w, "Jobs skipped (this hyperperiod): %d\n", s.Skips)
	fmt.Fprintf(w, "Deadline misses (total): %d\n", s.TotalMisses)

	if s.Misses > 0 {
		fmt.Fprintln(w, "\n*** WARNING: Deadline misses detected! ***")
	}
	fmt.Fprintln(w)
}

// micros renders an instant as microseconds since the epoch; zero instants
// (skipped jobs) render as 0.
func micros(epoch, t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Sub(epoch).Microseconds()
}

func frameLabel(frame int) string {
	if frame < 0 {
		return " -- "
	}
	return fmt.Sprintf(" %2d ", frame)
}

func statusLabel(rec core.JobRecord) string {
	switch rec.Outcome() {
	case core.OutcomeSkipped:
		return " SKIPPED"
	case core.OutcomeMissed:
		return "  MISS  "
	default:
		return "   OK   "
	}
}

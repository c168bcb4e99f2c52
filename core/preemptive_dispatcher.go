package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PreemptiveOptions configures a PreemptiveDispatcher. All fields are
// optional; zero values select bounded defaults and no-op collaborators.
type PreemptiveOptions struct {
	Log                  *TelemetryLog
	Reporter             Reporter
	History              *SummaryHistory
	Logger               Logger
	Metrics              Metrics
	MissIndicator        Indicator
	HyperperiodIndicator Indicator

	// ReportInterval is how often the log is drained and reported. Zero
	// selects the task set's hyperperiod.
	ReportInterval time.Duration
}

// PreemptiveDispatcher is the priority-preemptive strategy: one execution
// context per periodic task, preempted by the host runtime. Each task loop
// computes its instance's theoretical release and deadline, gates the
// variable-cost job, executes or skips, logs, and suspends until the next
// period boundary. Wake targets are absolute (previous release + period),
// so scheduling jitter never accumulates into drift, and simultaneous
// releases are handed out in static priority order.
//
// A background context, the analogue of the lowest-priority monitor task,
// drains and reports the log once per hyperperiod.
type PreemptiveDispatcher struct {
	tasks          []TaskSpec
	in             instrumentation
	reportInterval time.Duration

	timer    *ReleaseTimer
	epoch    time.Time
	epochSet bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewPreemptiveDispatcher creates a dispatcher for the given task set.
// The set is validated once and never mutated afterwards.
func NewPreemptiveDispatcher(tasks []TaskSpec, opts PreemptiveOptions) (*PreemptiveDispatcher, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("preemptive dispatcher needs at least one task")
	}
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.Name == "" {
			return nil, fmt.Errorf("task without a name")
		}
		if t.Job == nil {
			return nil, fmt.Errorf("task %q has no job", t.Name)
		}
		if t.Period <= 0 {
			return nil, fmt.Errorf("task %q: period must be positive, got %v", t.Name, t.Period)
		}
		if t.Deadline < 0 {
			return nil, fmt.Errorf("task %q: deadline must not be negative, got %v", t.Name, t.Deadline)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate task name %q", t.Name)
		}
		seen[t.Name] = true
	}

	interval := opts.ReportInterval
	if interval <= 0 {
		interval = Hyperperiod(tasks)
	}

	d := &PreemptiveDispatcher{
		tasks:          tasks,
		reportInterval: interval,
		in: instrumentation{
			log:            opts.Log,
			reporter:       opts.Reporter,
			history:        opts.History,
			logger:         opts.Logger,
			metrics:        opts.Metrics,
			missIndicator:  opts.MissIndicator,
			hyperIndicator: opts.HyperperiodIndicator,
		},
	}
	d.in.applyDefaults()
	return d, nil
}

// Begin fixes the scheduler epoch. Start calls it with the current time if
// it has not been called; either way the epoch is established before any
// task loop launches, so no loop races the initialization.
func (d *PreemptiveDispatcher) Begin(epoch time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.epochSet {
		return
	}
	d.epoch = epoch
	d.epochSet = true
}

// Start launches one loop per task plus the reporting loop. Repeated calls
// while running are rejected.
func (d *PreemptiveDispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("preemptive dispatcher already running")
	}
	if !d.epochSet {
		d.epoch = time.Now()
		d.epochSet = true
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.timer = NewReleaseTimer()
	d.running = true
	d.mu.Unlock()

	d.logBanner()

	for _, spec := range d.tasks {
		d.wg.Add(1)
		go d.taskLoop(spec)
	}
	d.wg.Add(1)
	go d.monitorLoop()

	return nil
}

// Stop cancels all loops and waits for in-flight instances to finish.
// Buffered records of a partial hyperperiod are not drained.
func (d *PreemptiveDispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	timer := d.timer
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
	timer.Stop()

	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
}

// taskLoop is the per-task periodic loop:
// compute release/deadline → gate → execute or skip → log → wait for the
// next period boundary. The instance counter, not the observed wake time,
// drives all theoretical timing.
func (d *PreemptiveDispatcher) taskLoop(spec TaskSpec) {
	defer d.wg.Done()

	notify := make(chan time.Time, 1)
	relDeadline := spec.RelativeDeadline()

	for instance := uint64(0); ; instance++ {
		release := ReleaseTime(d.epoch, instance, spec.Period)
		deadline := AbsoluteDeadline(release, relDeadline)

		d.in.dispatchJob(spec.Name, spec.Job, spec.CostSource, -1, release, deadline)

		next := ReleaseTime(d.epoch, instance+1, spec.Period)
		d.timer.Schedule(next, spec.Priority, notify)

		select {
		case <-d.ctx.Done():
			return
		case <-notify:
		}
	}
}

// monitorLoop drains and reports the log once per report interval, anchored
// to the epoch like every other timing in the system.
func (d *PreemptiveDispatcher) monitorLoop() {
	defer d.wg.Done()

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for k := uint64(1); ; k++ {
		target := d.epoch.Add(time.Duration(k) * d.reportInterval)
		timer.Reset(time.Until(target))

		select {
		case <-d.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			d.in.completeHyperperiod(d.epoch)
		}
	}
}

// Stats returns a snapshot of the dispatcher.
func (d *PreemptiveDispatcher) Stats() DispatcherStats {
	d.mu.Lock()
	running := d.running
	epoch := d.epoch
	d.mu.Unlock()

	logStats := d.in.log.Stats()
	return DispatcherStats{
		Strategy:     "preemptive",
		Running:      running,
		Epoch:        epoch,
		Hyperperiods: logStats.Hyperperiods,
		Pending:      logStats.Pending,
		TotalMisses:  logStats.TotalMisses,
		TotalSkips:   logStats.TotalSkips,
		TotalDropped: logStats.TotalDropped,
	}
}

// History returns the summary history wired at construction, if any.
func (d *PreemptiveDispatcher) History() *SummaryHistory {
	return d.in.history
}

func (d *PreemptiveDispatcher) logBanner() {
	d.in.logger.Info("preemptive dispatcher starting",
		F("tasks", len(d.tasks)),
		F("report_interval", d.reportInterval))
	for _, t := range d.tasks {
		d.in.logger.Info("task registered",
			F("task", t.Name),
			F("period", t.Period),
			F("deadline", t.RelativeDeadline()),
			F("priority", t.Priority),
			F("gated", t.CostSource != nil))
	}
}

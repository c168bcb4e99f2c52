package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// CyclicOptions configures a CyclicDispatcher. All fields are optional;
// zero values select bounded defaults and no-op collaborators.
type CyclicOptions struct {
	Log                  *TelemetryLog
	Reporter             Reporter
	History              *SummaryHistory
	Logger               Logger
	Metrics              Metrics
	MissIndicator        Indicator
	HyperperiodIndicator Indicator
}

// CyclicDispatcher is the time-triggered strategy: a single non-reentrant
// tick loop that, once per minor frame, executes the frame's jobs strictly
// in table order against a shared frame deadline. No preemption happens
// within a frame; an overrunning frame is flagged but never aborted, and
// subsequent frames stay anchored to the epoch-derived timeline.
//
// The design assumes the tick handler completes before the next tick and
// does not defend against a re-entrant tick.
type CyclicDispatcher struct {
	schedule *FrameSchedule
	in       instrumentation

	// currentFrame counts frames since the epoch, monotonically; the frame
	// within the hyperperiod is currentFrame mod NumFrames.
	currentFrame atomic.Uint64

	epoch    time.Time
	epochSet bool

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	mu      sync.Mutex
	running bool
}

// NewCyclicDispatcher creates a dispatcher for the given frame schedule.
func NewCyclicDispatcher(schedule *FrameSchedule, opts CyclicOptions) (*CyclicDispatcher, error) {
	if schedule == nil {
		return nil, fmt.Errorf("cyclic dispatcher needs a frame schedule")
	}

	d := &CyclicDispatcher{
		schedule: schedule,
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

// Begin fixes the scheduler epoch: the absolute reference every frame start
// and deadline derives from. Calling Begin before Start removes any window
// between the first tick and epoch initialization; Start calls it with the
// current time if it has not been called.
func (d *CyclicDispatcher) Begin(epoch time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.epochSet {
		return
	}
	d.epoch = epoch
	d.epochSet = true
}

// Start begins driving frames off a periodic tick. Repeated calls while
// running are rejected.
func (d *CyclicDispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("cyclic dispatcher already running")
	}
	if !d.epochSet {
		d.epoch = time.Now()
		d.epochSet = true
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.stopped = make(chan struct{})
	d.running = true
	d.mu.Unlock()

	d.logBanner()

	go d.run()
	return nil
}

// Stop halts the tick loop and waits for the in-flight frame to finish.
// The log is not drained; records of a partial hyperperiod stay buffered.
func (d *CyclicDispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	stopped := d.stopped
	d.mu.Unlock()

	cancel()
	<-stopped

	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
}

func (d *CyclicDispatcher) run() {
	defer close(d.stopped)

	// Frame 0 belongs at the epoch itself. Waiting for the first tick would
	// shift every frame's execution onto its own deadline.
	d.Step()

	ticker := time.NewTicker(d.schedule.FrameLength())
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.Step()
		}
	}
}

// Step executes every job of the current frame against the frame's
// epoch-derived deadline, flags an overrun if the frame exceeded its length,
// and advances the frame counter. On hyperperiod wrap it drains and reports
// the log. Run drives Step off the frame ticker; calling it directly drives
// the schedule without a timebase.
func (d *CyclicDispatcher) Step() {
	frame := d.currentFrame.Load()
	local := int(frame % uint64(d.schedule.NumFrames()))
	frameLength := d.schedule.FrameLength()

	frameStart := d.epoch.Add(time.Duration(frame) * frameLength)
	frameDeadline := frameStart.Add(frameLength)

	started := time.Now()
	for _, slot := range d.schedule.jobsFor(frame) {
		d.in.dispatchJob(slot.name, slot.fn, slot.costSource, local, frameStart, frameDeadline)
	}

	if elapsed := time.Since(started); elapsed > frameLength {
		overrun := elapsed - frameLength
		d.in.missIndicator.Toggle()
		d.in.metrics.RecordFrameOverrun(local, overrun)
		d.in.logger.Warn("frame overrun",
			F("frame", local),
			F("elapsed", elapsed),
			F("budget", frameLength))
	}

	next := frame + 1
	d.currentFrame.Store(next)

	if next%uint64(d.schedule.NumFrames()) == 0 {
		d.in.completeHyperperiod(d.epoch)
	}
}

// Stats returns a snapshot of the dispatcher.
func (d *CyclicDispatcher) Stats() DispatcherStats {
	d.mu.Lock()
	running := d.running
	epoch := d.epoch
	d.mu.Unlock()

	logStats := d.in.log.Stats()
	return DispatcherStats{
		Strategy:     "cyclic",
		Running:      running,
		Epoch:        epoch,
		Frame:        d.currentFrame.Load(),
		Hyperperiods: logStats.Hyperperiods,
		Pending:      logStats.Pending,
		TotalMisses:  logStats.TotalMisses,
		TotalSkips:   logStats.TotalSkips,
		TotalDropped: logStats.TotalDropped,
	}
}

// History returns the summary history wired at construction, if any.
func (d *CyclicDispatcher) History() *SummaryHistory {
	return d.in.history
}

func (d *CyclicDispatcher) logBanner() {
	d.in.logger.Info("cyclic dispatcher starting",
		F("frame_length", d.schedule.FrameLength()),
		F("frames", d.schedule.NumFrames()),
		F("hyperperiod", d.schedule.Hyperperiod()))
	for _, line := range d.schedule.Preview() {
		d.in.logger.Info(line)
	}
}

package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rtsched/go-rt-dispatch/core"
)

// DispatcherSnapshotProvider provides current dispatcher stats snapshots.
// Both dispatch strategies implement it.
type DispatcherSnapshotProvider interface {
	Stats() core.DispatcherStats
}

// SnapshotPoller periodically exports dispatcher Stats() snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]DispatcherSnapshotProvider

	running      *prom.GaugeVec
	currentFrame *prom.GaugeVec
	hyperperiods *prom.GaugeVec
	pending      *prom.GaugeVec
	totalMisses  *prom.GaugeVec
	totalSkips   *prom.GaugeVec
	totalDropped *prom.GaugeVec

	stateMu sync.Mutex
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	labels := []string{"dispatcher", "strategy"}
	running := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtdispatch",
		Name:      "dispatcher_running",
		Help:      "Dispatcher running state (1=running, 0=stopped).",
	}, labels)
	currentFrame := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtdispatch",
		Name:      "dispatcher_frame",
		Help:      "Absolute frame counter (cyclic strategy).",
	}, labels)
	hyperperiods := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtdispatch",
		Name:      "dispatcher_hyperperiods",
		Help:      "Completed hyperperiods snapshot.",
	}, labels)
	pending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtdispatch",
		Name:      "dispatcher_pending_records",
		Help:      "Records buffered in the telemetry log.",
	}, labels)
	totalMisses := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtdispatch",
		Name:      "dispatcher_misses_total",
		Help:      "Cumulative deadline miss count snapshot.",
	}, labels)
	totalSkips := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtdispatch",
		Name:      "dispatcher_skips_total",
		Help:      "Cumulative admission skip count snapshot.",
	}, labels)
	totalDropped := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtdispatch",
		Name:      "dispatcher_dropped_total",
		Help:      "Cumulative dropped record count snapshot.",
	}, labels)

	var err error
	if running, err = registerCollector(reg, running); err != nil {
		return nil, err
	}
	if currentFrame, err = registerCollector(reg, currentFrame); err != nil {
		return nil, err
	}
	if hyperperiods, err = registerCollector(reg, hyperperiods); err != nil {
		return nil, err
	}
	if pending, err = registerCollector(reg, pending); err != nil {
		return nil, err
	}
	if totalMisses, err = registerCollector(reg, totalMisses); err != nil {
		return nil, err
	}
	if totalSkips, err = registerCollector(reg, totalSkips); err != nil {
		return nil, err
	}
	if totalDropped, err = registerCollector(reg, totalDropped); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:     interval,
		providers:    make(map[string]DispatcherSnapshotProvider),
		running:      running,
		currentFrame: currentFrame,
		hyperperiods: hyperperiods,
		pending:      pending,
		totalMisses:  totalMisses,
		totalSkips:   totalSkips,
		totalDropped: totalDropped,
	}, nil
}

// AddDispatcher adds or replaces a dispatcher snapshot provider by name.
func (p *SnapshotPoller) AddDispatcher(name string, provider DispatcherSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "dispatcher")
	p.providersMu.Lock()
	p.providers[name] = provider
	p.providersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.active {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.active = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.active {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.active = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()

	for name, provider := range p.providers {
		stats := provider.Stats()
		strategy := normalizeLabel(stats.Strategy, "unknown")

		if stats.Running {
			p.running.WithLabelValues(name, strategy).Set(1)
		} else {
			p.running.WithLabelValues(name, strategy).Set(0)
		}
		p.currentFrame.WithLabelValues(name, strategy).Set(float64(stats.Frame))
		p.hyperperiods.WithLabelValues(name, strategy).Set(float64(stats.Hyperperiods))
		p.pending.WithLabelValues(name, strategy).Set(float64(stats.Pending))
		p.totalMisses.WithLabelValues(name, strategy).Set(float64(stats.TotalMisses))
		p.totalSkips.WithLabelValues(name, strategy).Set(float64(stats.TotalSkips))
		p.totalDropped.WithLabelValues(name, strategy).Set(float64(stats.TotalDropped))
	}
}

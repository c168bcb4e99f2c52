package prometheus_test

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rtsched/go-rt-dispatch/core"
	obs "github.com/rtsched/go-rt-dispatch/observability/prometheus"
)

type fakeProvider struct {
	stats core.DispatcherStats
}

func (f *fakeProvider) Stats() core.DispatcherStats { return f.stats }

func TestSnapshotPoller_ExportsDispatcherGauges(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := obs.NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	provider := &fakeProvider{stats: core.DispatcherStats{
		Strategy:     "cyclic",
		Running:      true,
		Frame:        13,
		Hyperperiods: 2,
		Pending:      7,
		TotalMisses:  3,
	}}
	poller.AddDispatcher("main", provider)

	poller.Start(context.Background())
	defer poller.Stop()

	// The poller collects once on start; no ticker wait needed.
	time.Sleep(20 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["dispatcher"] == "main" && labels["strategy"] == "cyclic" {
				got[f.GetName()] = m.GetGauge().GetValue()
			}
		}
	}

	checks := map[string]float64{
		"rtdispatch_dispatcher_running":         1,
		"rtdispatch_dispatcher_frame":           13,
		"rtdispatch_dispatcher_hyperperiods":    2,
		"rtdispatch_dispatcher_pending_records": 7,
		"rtdispatch_dispatcher_misses_total":    3,
	}
	for name, want := range checks {
		if got[name] != want {
			t.Errorf("%s = %v, want %v", name, got[name], want)
		}
	}
}

func TestSnapshotPoller_StartStopIdempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := obs.NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	poller.Start(context.Background())
	poller.Start(context.Background())
	poller.Stop()
	poller.Stop()

	// Restartable after a full stop.
	poller.Start(context.Background())
	poller.Stop()
}

// Package status exposes a read-only HTTP surface over a running
// dispatcher: liveness, the most recent hyperperiod reports, dispatcher
// stats and Prometheus metrics.
package status

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rtsched/go-rt-dispatch/core"
)

// StatsFunc returns the current dispatcher snapshot.
type StatsFunc func() core.DispatcherStats

// Options configures the status server.
type Options struct {
	// History supplies past hyperperiod summaries for /report endpoints.
	History *core.SummaryHistory

	// Stats supplies the /stats snapshot.
	Stats StatsFunc

	// MetricsHandler serves /metrics; nil selects the default promhttp
	// handler over the default registry.
	MetricsHandler http.Handler
}

// Server is the HTTP status surface. It only reads dispatcher state; the
// schedule configuration is fixed at startup and has no mutating endpoint.
type Server struct {
	router  *httprouter.Router
	history *core.SummaryHistory
	stats   StatsFunc
}

// NewServer builds the routing table.
func NewServer(opts Options) *Server {
	s := &Server{
		router:  httprouter.New(),
		history: opts.History,
		stats:   opts.Stats,
	}

	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	s.router.GET("/ping", s.ping)
	s.router.GET("/report", s.latestReport)
	s.router.GET("/report/history", s.reportHistory)
	s.router.GET("/stats", s.dispatcherStats)
	s.router.Handler(http.MethodGet, "/metrics", metricsHandler)

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the status surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprintf(w, "pong %d", time.Now().UnixMicro())
}

func (s *Server) latestReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.history == nil {
		http.Error(w, "no report history configured", http.StatusNotFound)
		return
	}
	summary, ok := s.history.Last()
	if !ok {
		http.Error(w, "no hyperperiod completed yet", http.StatusNotFound)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) reportHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.history == nil {
		http.Error(w, "no report history configured", http.StatusNotFound)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	summaries := s.history.Recent(limit)
	if summaries == nil {
		summaries = []core.HyperperiodSummary{}
	}
	writeJSON(w, summaries)
}

func (s *Server) dispatcherStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.stats == nil {
		http.Error(w, "no stats source configured", http.StatusNotFound)
		return
	}
	writeJSON(w, s.stats())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

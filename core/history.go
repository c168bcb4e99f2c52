package core

import (
	"sync"
)

const defaultHistoryCapacity = 32

// SummaryHistory retains the most recent hyperperiod summaries in a bounded
// ring, newest first on read. It backs the status surface, which wants to
// show past hyperperiods after their console report has scrolled by.
type SummaryHistory struct {
	mu    sync.Mutex
	items []HyperperiodSummary
	head  int
	count int
}

// NewSummaryHistory creates a history bounded to the given capacity.
// A non-positive capacity selects the default.
func NewSummaryHistory(capacity int) *SummaryHistory {
	if capacity < 1 {
		capacity = defaultHistoryCapacity
	}
	return &SummaryHistory{items: make([]HyperperiodSummary, capacity)}
}

// Add stores a summary, evicting the oldest when full.
func (h *SummaryHistory) Add(summary HyperperiodSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = summary
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit summaries, newest first. A non-positive limit
// returns everything retained.
func (h *SummaryHistory) Recent(limit int) []HyperperiodSummary {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}
	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]HyperperiodSummary, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

// Last returns the most recent summary, if any.
func (h *SummaryHistory) Last() (HyperperiodSummary, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return HyperperiodSummary{}, false
	}
	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}

package core

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// pendingRelease is one task loop's next theoretical release.
type pendingRelease struct {
	at       time.Time
	priority int
	notify   chan<- time.Time
	index    int // for heap interface
}

// releaseHeap orders releases by time; at equal instants, higher priority
// first, so simultaneous releases are handed out in rate-monotonic order.
type releaseHeap []*pendingRelease

func (h releaseHeap) Len() int { return len(h) }
func (h releaseHeap) Less(i, j int) bool {
	if !h[i].at.Equal(h[j].at) {
		return h[i].at.Before(h[j].at)
	}
	return h[i].priority > h[j].priority
}
func (h releaseHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *releaseHeap) Push(x any) {
	n := len(*h)
	item := x.(*pendingRelease)
	item.index = n
	*h = append(*h, item)
}

func (h *releaseHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *releaseHeap) Peek() *pendingRelease {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// =============================================================================
// ReleaseTimer
// =============================================================================

// ReleaseTimer wakes task loops at absolute instants. Each loop schedules
// its next release as previous release + period and blocks until notified,
// so period drift never accumulates: a late wake-up does not move the
// following wake target.
//
// One timer goroutine serves all tasks off a min-heap of pending releases.
type ReleaseTimer struct {
	mu     sync.Mutex
	pq     releaseHeap
	wakeup chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// NewReleaseTimer creates a ReleaseTimer and starts its timer goroutine.
func NewReleaseTimer() *ReleaseTimer {
	ctx, cancel := context.WithCancel(context.Background())
	rt := &ReleaseTimer{
		pq:     make(releaseHeap, 0),
		wakeup: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	heap.Init(&rt.pq)
	go rt.loop()
	return rt
}

// Schedule arranges for notify to receive the release instant once `at` has
// passed. notify must be buffered; the timer never blocks on delivery, and a
// loop that has not consumed its previous release keeps only the newest one.
func (rt *ReleaseTimer) Schedule(at time.Time, priority int, notify chan<- time.Time) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	item := &pendingRelease{at: at, priority: priority, notify: notify}
	heap.Push(&rt.pq, item)

	if item.index == 0 {
		select {
		case rt.wakeup <- struct{}{}:
		default:
		}
	}
}

func (rt *ReleaseTimer) loop() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		next := rt.nextWait()
		if next <= 0 {
			// Nothing pending or the head is already due; either fire
			// immediately or park until a Schedule call wakes us.
			if rt.fireDue() {
				continue
			}
			next = 1000 * time.Hour
		}

		timer.Reset(next)

		select {
		case <-rt.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			rt.fireDue()
		case <-rt.wakeup:
			// Earlier release scheduled, recompute the wait.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}

// nextWait returns the time until the earliest pending release, zero if one
// is already due, or a negative value if the heap is empty.
func (rt *ReleaseTimer) nextWait() time.Duration {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	item := rt.pq.Peek()
	if item == nil {
		return -1
	}

	wait := time.Until(item.at)
	if wait < 0 {
		return 0
	}
	return wait
}

// fireDue pops every due release and notifies its loop. Pops happen in heap
// order, so releases due at the same instant notify highest priority first.
// Reports whether anything fired.
func (rt *ReleaseTimer) fireDue() bool {
	rt.mu.Lock()

	now := time.Now()
	var due []*pendingRelease
	for rt.pq.Len() > 0 {
		item := rt.pq.Peek()
		if item.at.After(now) {
			break
		}
		heap.Pop(&rt.pq)
		due = append(due, item)
	}

	rt.mu.Unlock()

	// Notify outside the lock.
	for _, item := range due {
		select {
		case item.notify <- item.at:
		default:
		}
	}
	return len(due) > 0
}

// Pending returns the number of scheduled releases not yet fired.
func (rt *ReleaseTimer) Pending() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.pq)
}

// Stop halts the timer goroutine and discards pending releases. Blocked
// loops are expected to unblock through their own context.
func (rt *ReleaseTimer) Stop() {
	rt.cancel()

	rt.mu.Lock()
	rt.pq = make(releaseHeap, 0)
	heap.Init(&rt.pq)
	rt.mu.Unlock()
}

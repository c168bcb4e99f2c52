package core

import (
	"fmt"
	"strings"
	"time"
)

// JobID is an enumerated job identifier. Frame tables reference jobs by ID
// and resolve them once, at construction, through a JobTable; after that
// every lookup is a plain slice index.
type JobID string

// JobEntry binds a JobID to its implementation.
type JobEntry struct {
	// Name is the task name used in log records; defaults to the ID.
	Name string

	// Fn is the job computation.
	Fn JobFunc

	// CostSource, when non-nil, marks the job variable-cost and subjects it
	// to the admission gate on every dispatch.
	CostSource DurationSource
}

// JobTable maps job identifiers to implementations. It is consulted only
// while building a FrameSchedule, never on the dispatch path.
type JobTable map[JobID]JobEntry

// frameJob is one resolved slot of the frame table.
type frameJob struct {
	id         JobID
	name       string
	fn         JobFunc
	costSource DurationSource
}

// =============================================================================
// FrameSchedule
// =============================================================================

// FrameSchedule is the static table driving the cyclic strategy: an ordered,
// fixed-size list of frames covering exactly one hyperperiod, each holding
// the ordered jobs to run within that frame's fixed length. The table is
// immutable after construction and consulted by frame index modulo the
// number of frames.
type FrameSchedule struct {
	frameLength time.Duration
	frames      [][]frameJob
}

// NewFrameSchedule resolves the given per-frame job ID lists against the
// table and validates the result. Jobs run in exactly the listed order.
func NewFrameSchedule(frameLength time.Duration, frames [][]JobID, table JobTable) (*FrameSchedule, error) {
	if frameLength <= 0 {
		return nil, fmt.Errorf("frame length must be positive, got %v", frameLength)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("schedule needs at least one frame")
	}

	resolved := make([][]frameJob, len(frames))
	for i, ids := range frames {
		slots := make([]frameJob, 0, len(ids))
		for _, id := range ids {
			entry, ok := table[id]
			if !ok {
				return nil, fmt.Errorf("frame %d references unknown job %q", i, id)
			}
			if entry.Fn == nil {
				return nil, fmt.Errorf("job %q has no function", id)
			}
			name := entry.Name
			if name == "" {
				name = string(id)
			}
			slots = append(slots, frameJob{
				id:         id,
				name:       name,
				fn:         entry.Fn,
				costSource: entry.CostSource,
			})
		}
		resolved[i] = slots
	}

	return &FrameSchedule{frameLength: frameLength, frames: resolved}, nil
}

// FrameLength returns the fixed minor frame duration.
func (s *FrameSchedule) FrameLength() time.Duration {
	return s.frameLength
}

// NumFrames returns the number of minor frames in one hyperperiod.
func (s *FrameSchedule) NumFrames() int {
	return len(s.frames)
}

// Hyperperiod returns the total length of one table pass.
func (s *FrameSchedule) Hyperperiod() time.Duration {
	return s.frameLength * time.Duration(len(s.frames))
}

// jobsFor returns the resolved slots for an absolute frame counter.
func (s *FrameSchedule) jobsFor(frame uint64) []frameJob {
	return s.frames[int(frame%uint64(len(s.frames)))]
}

// Preview renders one line per frame listing its job names, for startup
// banners.
func (s *FrameSchedule) Preview() []string {
	lines := make([]string, len(s.frames))
	for i, slots := range s.frames {
		names := make([]string, len(slots))
		for j, slot := range slots {
			names[j] = slot.name
		}
		lines[i] = fmt.Sprintf("F%02d: %s", i, strings.Join(names, ", "))
	}
	return lines
}

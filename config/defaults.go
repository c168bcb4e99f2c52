package config

import (
	"time"

	"github.com/rtsched/go-rt-dispatch/core"
)

// Reference workload: six jobs with calibrated spin costs. Job C's cost is
// variable, driven by an external sample source.
const (
	costA = 1 * time.Millisecond
	costB = 1 * time.Millisecond
	costD = 2 * time.Millisecond
	costE = 4 * time.Millisecond
	costF = 2 * time.Millisecond
)

// DefaultJobTable builds the reference job set A-F. Job C spins for the
// duration reported by src, and the same source feeds its admission gate.
// A nil src pins C to a fixed 2ms cost, which also disables the gate.
func DefaultJobTable(src core.DurationSource) core.JobTable {
	table := core.JobTable{
		"A": {Name: "Task_A", Fn: core.NewSpinJob(costA)},
		"B": {Name: "Task_B", Fn: core.NewSpinJob(costB)},
		"D": {Name: "Task_D", Fn: core.NewSpinJob(costD)},
		"E": {Name: "Task_E", Fn: core.NewSpinJob(costE)},
		"F": {Name: "Task_F", Fn: core.NewSpinJob(costF)},
	}

	if src == nil {
		table["C"] = core.JobEntry{Name: "Task_C", Fn: core.NewSpinJob(2 * time.Millisecond)}
	} else {
		table["C"] = core.JobEntry{Name: "Task_C", Fn: core.NewVariableSpinJob(src), CostSource: src}
	}
	return table
}

// DefaultDocument returns the reference configuration: a 5ms minor frame,
// 20-frame (100ms) cyclic table, and the matching rate-monotonic task set.
//
// Per hyperperiod the table runs A 10 times, B every frame, C 4 times,
// D 3 times, E twice and F 5 times, with B always first in its frame.
func DefaultDocument() *Document {
	return &Document{
		FrameLength: Duration(5 * time.Millisecond),
		Frames: [][]string{
			{"B", "A", "D"}, // F00 (0ms)  load 4ms
			{"B", "F"},      // F01 (5ms)  load 3ms
			{"B", "A"},      // F02 (10ms) load 2ms
			{"B", "C"},      // F03 (15ms) load 1ms + C
			{"B", "A", "F"}, // F04 (20ms) load 4ms
			{"B", "C"},      // F05 (25ms) load 1ms + C
			{"B", "A"},      // F06 (30ms) load 2ms
			{"B", "E"},      // F07 (35ms) load 5ms
			{"B", "A", "F"}, // F08 (40ms) load 4ms
			{"B"},           // F09 (45ms) load 1ms
			{"B", "A", "D"}, // F10 (50ms) load 4ms
			{"B", "C"},      // F11 (55ms) load 1ms + C
			{"B", "A", "F"}, // F12 (60ms) load 4ms
			{"B", "D"},      // F13 (65ms) load 3ms
			{"B", "A"},      // F14 (70ms) load 2ms
			{"B", "C"},      // F15 (75ms) load 1ms + C
			{"B", "A", "F"}, // F16 (80ms) load 4ms
			{"B", "E"},      // F17 (85ms) load 5ms
			{"B", "A"},      // F18 (90ms) load 2ms
			{"B"},           // F19 (95ms) load 1ms
		},
		Tasks: []TaskConfig{
			{Name: "Task_B", Job: "B", Period: Duration(5 * time.Millisecond), Priority: 6},
			{Name: "Task_A", Job: "A", Period: Duration(10 * time.Millisecond), Priority: 5},
			{Name: "Task_F", Job: "F", Period: Duration(20 * time.Millisecond), Priority: 4},
			{Name: "Task_C", Job: "C", Period: Duration(25 * time.Millisecond), Priority: 3},
			{Name: "Task_D", Job: "D", Period: Duration(50 * time.Millisecond), Priority: 2},
			{Name: "Task_E", Job: "E", Period: Duration(50 * time.Millisecond), Priority: 1},
		},
		LogCapacity: core.DefaultLogCapacity,
	}
}

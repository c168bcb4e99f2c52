// Package config loads the fixed startup configuration for both dispatch
// strategies: the periodic task set for the preemptive model and the frame
// table for the cyclic model. Configuration is read once and never mutated
// at run time.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rtsched/go-rt-dispatch/core"
)

// Duration wraps time.Duration with YAML decoding from strings like "5ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"5ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// TaskConfig is one periodic task of the preemptive model.
type TaskConfig struct {
	Name     string   `yaml:"name"`
	Job      string   `yaml:"job"`
	Period   Duration `yaml:"period"`
	Deadline Duration `yaml:"deadline,omitempty"` // zero: implicit (deadline = period)
	Priority int      `yaml:"priority"`
}

// Document is the full configuration surface. The cyclic model consumes
// FrameLength and Frames; the preemptive model consumes Tasks. Both may be
// present in one document.
type Document struct {
	FrameLength Duration     `yaml:"frame_length,omitempty"`
	Frames      [][]string   `yaml:"frames,omitempty"`
	Tasks       []TaskConfig `yaml:"tasks,omitempty"`
	LogCapacity int          `yaml:"log_capacity,omitempty"`
}

// Load decodes a configuration document from r.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &doc, nil
}

// LoadFile decodes a configuration document from a file.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// FrameSchedule builds the cyclic model's frame table, resolving job IDs
// through the given table.
func (d *Document) FrameSchedule(table core.JobTable) (*core.FrameSchedule, error) {
	frames := make([][]core.JobID, len(d.Frames))
	for i, ids := range d.Frames {
		row := make([]core.JobID, len(ids))
		for j, id := range ids {
			row[j] = core.JobID(id)
		}
		frames[i] = row
	}
	return core.NewFrameSchedule(time.Duration(d.FrameLength), frames, table)
}

// TaskSet builds the preemptive model's task set, resolving job IDs through
// the given table. A task whose table entry carries a cost source is gated.
func (d *Document) TaskSet(table core.JobTable) ([]core.TaskSpec, error) {
	if len(d.Tasks) == 0 {
		return nil, fmt.Errorf("config has no tasks")
	}

	specs := make([]core.TaskSpec, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		entry, ok := table[core.JobID(t.Job)]
		if !ok {
			return nil, fmt.Errorf("task %q references unknown job %q", t.Name, t.Job)
		}
		name := t.Name
		if name == "" {
			name = entry.Name
		}
		specs = append(specs, core.TaskSpec{
			Name:       name,
			Job:        entry.Fn,
			Period:     time.Duration(t.Period),
			Deadline:   time.Duration(t.Deadline),
			Priority:   t.Priority,
			CostSource: entry.CostSource,
		})
	}
	return specs, nil
}

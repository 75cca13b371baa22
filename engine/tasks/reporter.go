package tasks

import (
	"sync"
)

// Reporter receives progress updates of tasks. Update is called from
// different goroutines, for different tasks, and must be safe for
// concurrent use. The last update for a task has p.Completed set.
type Reporter interface {
	Update(t *Task, p Progress)
}

// NopReporter discards all progress updates.
type NopReporter struct{}

// Update does nothing.
func (NopReporter) Update(*Task, Progress) {}

// TraceReporter writes progress to the trace. To keep the trace readable,
// it reports a task in steps of 10% only (or once, for tasks without a
// known total), plus on completion.
type TraceReporter struct {
	mu   sync.Mutex
	last map[*Task]int
}

// NewTraceReporter creates a reporter writing to the trace.
func NewTraceReporter() *TraceReporter {
	return &TraceReporter{last: make(map[*Task]int)}
}

// Update reports progress to the trace.
func (r *TraceReporter) Update(t *Task, p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Completed {
		delete(r.last, t)
		tracer().Infof("%s: done", t.Description)
		return
	}
	step := int(p.Percent()) / 10
	if last, seen := r.last[t]; seen && last >= step {
		return
	}
	r.last[t] = step
	if p.Indeterminate() {
		tracer().Infof("%s …", t.Description)
		return
	}
	tracer().Infof("%s: %3d%%", t.Description, step*10)
}

// Recorder is a reporter which remembers the last progress of every task.
type Recorder struct {
	mu      sync.Mutex
	last    map[*Task]Progress
	updates map[*Task]int
}

// NewRecorder creates a recording reporter.
func NewRecorder() *Recorder {
	return &Recorder{
		last:    make(map[*Task]Progress),
		updates: make(map[*Task]int),
	}
}

// Update records the progress of a task.
func (r *Recorder) Update(t *Task, p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[t] = p
	r.updates[t]++
}

// Last returns the last recorded progress of a task.
func (r *Recorder) Last(t *Task) (Progress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.last[t]
	return p, ok
}

// Updates returns the number of updates recorded for a task.
func (r *Recorder) Updates(t *Task) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[t]
}

// Tasks returns the descriptions of all tasks seen, completed or not.
func (r *Recorder) Tasks() map[string]Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := make(map[string]Progress, len(r.last))
	for t, p := range r.last {
		m[t.Description] = p
	}
	return m
}

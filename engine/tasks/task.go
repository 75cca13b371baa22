package tasks

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the state of a task.
type State int32

// Tasks go from Pending to Running to Completed, and never back.
const (
	Pending State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Progress is a snapshot of the progress of a task.
type Progress struct {
	Done      int64
	Total     int64 // 0 if unknown
	Completed bool
}

// Indeterminate is true if the total of a progress is unknown.
func (p Progress) Indeterminate() bool {
	return p.Total <= 0
}

// Percent returns the progress in percent. Unless the task has completed,
// Percent stays below 100, even if the tracked output has outgrown its
// estimated total.
func (p Progress) Percent() float64 {
	if p.Completed {
		return 100
	}
	if p.Total <= 0 {
		return 0
	}
	pct := float64(p.Done) * 100 / float64(p.Total)
	if pct > 99 {
		pct = 99
	}
	return pct
}

// DefaultInterval is the time between two polls of a task's strategy.
const DefaultInterval = 100 * time.Millisecond

// Errors for tasks used the wrong way.
var (
	ErrAlreadyStarted = errors.New("task already started")
	ErrNotStarted     = errors.New("task not started")
)

// Task runs an operation in a goroutine and observes its progress with a
// second one. The observing goroutine is the only writer of a task's
// progress while the task is running; after the operation has returned,
// Join writes the final progress.
type Task struct {
	Description string
	Interval    time.Duration // time between polls, DefaultInterval if 0

	work     func() error
	strategy Strategy
	reporter Reporter

	mu       sync.Mutex
	state    State
	progress Progress

	stop         chan struct{}
	workerDone   chan struct{}
	observerDone chan struct{}
	err          error // result of work, readable after workerDone is closed
	joinOnce     sync.Once
	finishOnce   sync.Once
}

// New creates a pending task. work may be nil for a no-op. reporter may be
// nil, in which case progress is not reported.
func New(description string, work func() error, strategy Strategy, reporter Reporter) *Task {
	if work == nil {
		work = func() error { return nil }
	}
	if strategy == nil {
		strategy = Indeterminate()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Task{
		Description: description,
		work:        work,
		strategy:    strategy,
		reporter:    reporter,
	}
}

// NewCompleted creates a task which is completed from the start, e.g. for
// displaying steps which have been done before.
func NewCompleted(description string, reporter Reporter) *Task {
	t := New(description, nil, PreCompleted(), reporter)
	t.finish()
	return t
}

// State returns the current state of a task.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Progress returns the last known progress of a task.
func (t *Task) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Start launches the operation and the progress observer.
func (t *Task) Start() error {
	t.mu.Lock()
	if t.state != Pending {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, t.Description)
	}
	t.state = Running
	t.stop = make(chan struct{})
	t.workerDone = make(chan struct{})
	t.observerDone = make(chan struct{})
	t.mu.Unlock()
	tracer().Debugf("task '%s' started", t.Description)
	go t.runWork()
	go t.observe()
	return nil
}

func (t *Task) runWork() {
	defer close(t.workerDone)
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("task '%s' panicked: %v", t.Description, r)
		}
	}()
	t.err = t.work()
}

func (t *Task) observe() {
	defer close(t.observerDone)
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	t.poll()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.poll()
		}
	}
}

func (t *Task) poll() {
	done, total := t.strategy.Poll()
	t.mu.Lock()
	t.progress = Progress{Done: done, Total: total}
	p := t.progress
	t.mu.Unlock()
	t.reporter.Update(t, p)
}

// Join waits for the operation to return, stops the progress observer and
// marks the task as completed. It returns the error of the operation.
// Join may be called more than once.
func (t *Task) Join() error {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()
	if state == Pending {
		return fmt.Errorf("%w: %s", ErrNotStarted, t.Description)
	}
	if t.workerDone == nil { // created completed
		return nil
	}
	t.joinOnce.Do(func() {
		<-t.workerDone
		close(t.stop)
		<-t.observerDone
		t.finish()
		if t.err != nil {
			tracer().Errorf("task '%s' failed: %v", t.Description, t.err)
		} else {
			tracer().Debugf("task '%s' completed", t.Description)
		}
	})
	return t.err
}

// finish forces the progress to 100%. For tasks without a known total, the
// total is set to 1. finish has an effect only once.
func (t *Task) finish() {
	t.finishOnce.Do(func() {
		t.mu.Lock()
		if t.progress.Total <= 0 {
			t.progress.Total = 1
		}
		t.progress.Done = t.progress.Total
		t.progress.Completed = true
		t.state = Completed
		p := t.progress
		t.mu.Unlock()
		t.reporter.Update(t, p)
	})
}

// Run starts all tasks, then joins all of them. It returns the errors of
// all failed tasks.
func Run(tasks ...*Task) error {
	for i, t := range tasks {
		if err := t.Start(); err != nil {
			for _, started := range tasks[:i] {
				started.Join()
			}
			return err
		}
	}
	var errs []error
	for _, t := range tasks {
		if err := t.Join(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

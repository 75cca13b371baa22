package tasks

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completions counts the completed-updates per task.
type completions struct {
	sync.Mutex
	count map[string]int
	seen  []Progress
}

func (c *completions) Update(t *Task, p Progress) {
	c.Lock()
	defer c.Unlock()
	if c.count == nil {
		c.count = make(map[string]int)
	}
	if p.Completed {
		c.count[t.Description]++
	}
	c.seen = append(c.seen, p)
}

func TestFileSizeTaskConvergesTo100Percent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.tasks")
	defer teardown()
	//
	out := filepath.Join(t.TempDir(), "out.ttx")
	reporter := &completions{}
	task := New("writing", func() error {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		for i := 0; i < 5; i++ {
			if _, err := f.Write(make([]byte, 100)); err != nil {
				return err
			}
			time.Sleep(10 * time.Millisecond)
		}
		return nil
	}, FileSize(out, 1000), reporter)
	task.Interval = 2 * time.Millisecond
	assert.Equal(t, Pending, task.State())
	require.NoError(t, task.Start())
	require.NoError(t, task.Join())
	p := task.Progress()
	assert.Equal(t, Completed, task.State())
	assert.True(t, p.Completed)
	assert.Equal(t, int64(1000), p.Total)
	assert.Equal(t, int64(1000), p.Done, "forced to the total although the file has 500 bytes")
	assert.Equal(t, 100.0, p.Percent())
	reporter.Lock()
	defer reporter.Unlock()
	assert.Equal(t, 1, reporter.count["writing"])
	require.NotEmpty(t, reporter.seen)
	assert.True(t, reporter.seen[len(reporter.seen)-1].Completed, "completion is the last update")
	for _, seen := range reporter.seen[:len(reporter.seen)-1] {
		assert.LessOrEqual(t, seen.Done, int64(500))
		assert.False(t, seen.Completed)
	}
}

func TestFileSizeOfMissingFileIsZero(t *testing.T) {
	s := FileSize(filepath.Join(t.TempDir(), "nope"), 42)
	done, total := s.Poll()
	assert.Equal(t, int64(0), done)
	assert.Equal(t, int64(42), total)
	_, total = FileSize("x", 0).Poll()
	assert.Equal(t, int64(1), total)
}

func TestOutgrownEstimateStaysBelow100UntilJoined(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(out, make([]byte, 300), 0644))
	release := make(chan struct{})
	task := New("big", func() error { <-release; return nil }, FileSize(out, 100), nil)
	task.Interval = time.Millisecond
	require.NoError(t, task.Start())
	require.Eventually(t, func() bool { return task.Progress().Done == 300 },
		time.Second, time.Millisecond)
	assert.Less(t, task.Progress().Percent(), 100.0)
	assert.Equal(t, Running, task.State())
	close(release)
	require.NoError(t, task.Join())
	assert.Equal(t, Progress{Done: 100, Total: 100, Completed: true}, task.Progress())
}

func TestIndeterminateTask(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.tasks")
	defer teardown()
	//
	rec := NewRecorder()
	task := New("compiling", func() error { time.Sleep(5 * time.Millisecond); return nil },
		Indeterminate(), rec)
	require.NoError(t, task.Start())
	require.NoError(t, task.Join())
	last, ok := rec.Last(task)
	require.True(t, ok)
	assert.Equal(t, Progress{Done: 1, Total: 1, Completed: true}, last)
	assert.GreaterOrEqual(t, rec.Updates(task), 2)
}

func TestCompletedTask(t *testing.T) {
	rec := NewRecorder()
	task := NewCompleted("base files", rec)
	assert.Equal(t, Completed, task.State())
	assert.Equal(t, 100.0, task.Progress().Percent())
	assert.True(t, errors.Is(task.Start(), ErrAlreadyStarted))
	assert.NoError(t, task.Join())
	assert.Equal(t, 1, rec.Updates(task))
	done, total := PreCompleted().Poll()
	assert.Equal(t, done, total)
}

func TestTaskMisuse(t *testing.T) {
	task := New("misused", nil, nil, nil)
	assert.True(t, errors.Is(task.Join(), ErrNotStarted))
	require.NoError(t, task.Start())
	assert.True(t, errors.Is(task.Start(), ErrAlreadyStarted))
	assert.NoError(t, task.Join())
	assert.NoError(t, task.Join(), "joining twice is fine")
}

func TestTaskErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.tasks")
	defer teardown()
	//
	boom := errors.New("boom")
	reporter := &completions{}
	failing := New("failing", func() error { return boom }, Indeterminate(), reporter)
	require.NoError(t, failing.Start())
	assert.Equal(t, boom, failing.Join())
	assert.Equal(t, boom, failing.Join())
	assert.Equal(t, Completed, failing.State(), "failed tasks complete as well")
	//
	panicking := New("panicking", func() error { panic("oops") }, Indeterminate(), reporter)
	require.NoError(t, panicking.Start())
	err := panicking.Join()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
	reporter.Lock()
	defer reporter.Unlock()
	assert.Equal(t, 1, reporter.count["failing"])
	assert.Equal(t, 1, reporter.count["panicking"])
}

func TestRunExecutesConcurrently(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.tasks")
	defer teardown()
	//
	// each task waits for the other one to have started
	a, b := make(chan struct{}), make(chan struct{})
	t1 := New("one", func() error { close(a); <-b; return nil }, nil, nil)
	t2 := New("two", func() error { close(b); <-a; return nil }, nil, nil)
	done := make(chan error)
	go func() { done <- Run(t1, t2) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not run concurrently")
	}
	//
	e1, e2 := errors.New("first"), errors.New("second")
	err := Run(New("x", func() error { return e1 }, nil, nil), New("y", nil, nil, nil),
		New("z", func() error { return e2 }, nil, nil))
	assert.True(t, errors.Is(err, e1))
	assert.True(t, errors.Is(err, e2))
	//
	started := New("started", nil, nil, nil)
	require.NoError(t, started.Start())
	other := New("other", nil, nil, nil)
	err = Run(other, started)
	assert.True(t, errors.Is(err, ErrAlreadyStarted))
	assert.Equal(t, Completed, other.State(), "tasks started by Run are joined on error")
	started.Join()
}

func TestTraceReporter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sbixer.tasks")
	defer teardown()
	//
	r := NewTraceReporter()
	task := New("traced", nil, nil, nil)
	r.Update(task, Progress{Done: 10, Total: 100})
	r.Update(task, Progress{Done: 15, Total: 100})
	assert.Equal(t, 1, r.last[task])
	r.Update(task, Progress{Done: 55, Total: 100})
	assert.Equal(t, 5, r.last[task])
	r.Update(task, Progress{Done: 100, Total: 100, Completed: true})
	_, tracked := r.last[task]
	assert.False(t, tracked)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "unknown", State(9).String())
}

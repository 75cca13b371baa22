package main

import (
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/npillmayer/sbixer/engine/tasks"
	"github.com/pterm/pterm"
)

// areaReporter displays the progress of tasks in a terminal area. Every task
// gets a progress bar, or a spinner if its total is unknown. Lines appear in
// the order tasks report first.
type areaReporter struct {
	mu    sync.Mutex
	multi *pterm.MultiPrinter
	lines map[*tasks.Task]*progressLine
}

func newAreaReporter() *areaReporter {
	return &areaReporter{lines: make(map[*tasks.Task]*progressLine)}
}

// Update is called concurrently by the observers of tasks.
func (r *areaReporter) Update(t *tasks.Task, p tasks.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.multi == nil {
		mp := pterm.DefaultMultiPrinter
		multi, err := mp.Start()
		if err != nil {
			tracer().Errorf("cannot display progress: %v", err)
			return
		}
		r.multi = multi
	}
	line, ok := r.lines[t]
	if !ok {
		line = newProgressLine(t.Description, p, r.multi.NewWriter())
		r.lines[t] = line
	}
	line.update(p)
}

// Stop ends the display of progress.
func (r *areaReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.lines {
		line.stop()
	}
	if r.multi != nil {
		r.multi.Stop()
		r.multi = nil
	}
	r.lines = make(map[*tasks.Task]*progressLine)
}

// progressLine is the display of a single task. Bars count in percent, as
// tracked file sizes may outgrow their estimates.
type progressLine struct {
	bar     *pterm.ProgressbarPrinter
	spinner *pterm.SpinnerPrinter
	percent int
	done    bool
}

func newProgressLine(desc string, p tasks.Progress, w io.Writer) *progressLine {
	line := &progressLine{}
	io.WriteString(w, desc) // the multi printer cannot render empty lines
	if p.Indeterminate() {
		line.spinner, _ = pterm.DefaultSpinner.WithWriter(w).WithRemoveWhenDone(false).Start(desc)
	} else {
		line.bar, _ = pterm.DefaultProgressbar.WithTotal(100).WithShowCount(false).
			WithTitle(desc).WithWriter(w).Start()
	}
	return line
}

func (line *progressLine) update(p tasks.Progress) {
	if line.done {
		return
	}
	if line.spinner != nil {
		if p.Completed {
			line.spinner.Success()
			line.done = true
		}
		return
	}
	pct := int(p.Percent())
	if pct > line.percent {
		line.bar.Add(pct - line.percent) // stops the bar at 100%
		line.percent = pct
	}
	line.done = p.Completed
}

func (line *progressLine) stop() {
	if line.done {
		return
	}
	if line.spinner != nil {
		line.spinner.Stop()
	} else {
		line.bar.Stop()
	}
	line.done = true
}

// confirm asks a yes/no question, defaulting to no.
func confirm(question string) (bool, error) {
	rl, err := readline.New(question + " Continue? [y/N] ")
	if err != nil {
		return false, err
	}
	defer rl.Close()
	line, err := rl.Readline()
	if err != nil { // io.EOF or interrupt
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

package tasks

import (
	"os"
)

// Strategy estimates the progress of an operation. Poll is called
// repeatedly from a single goroutine while the operation is running.
// A total of 0 means that the total is unknown.
type Strategy interface {
	Poll() (done, total int64)
}

// --- File size -------------------------------------------------------------

type fileSize struct {
	path  string
	total int64
}

// FileSize is a strategy which tracks the size of an output file against an
// expected total size. A file which does not exist yet has size 0.
// The expected size is an estimate; the final size of the file may differ.
func FileSize(path string, total int64) Strategy {
	if total < 1 {
		total = 1
	}
	return fileSize{path: path, total: total}
}

func (fs fileSize) Poll() (int64, int64) {
	fi, err := os.Stat(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			tracer().Debugf("cannot stat %s: %v", fs.path, err)
		}
		return 0, fs.total
	}
	return fi.Size(), fs.total
}

// --- Indeterminate ---------------------------------------------------------

type indeterminate struct{}

// Indeterminate is a strategy for operations without any observable
// progress.
func Indeterminate() Strategy {
	return indeterminate{}
}

func (indeterminate) Poll() (int64, int64) {
	return 0, 0
}

// --- Completed -------------------------------------------------------------

type completed struct{}

// PreCompleted is a strategy for tasks which are done before they start.
// See NewCompleted.
func PreCompleted() Strategy {
	return completed{}
}

func (completed) Poll() (int64, int64) {
	return 1, 1
}

package fetch

import (
	"errors"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 15 * time.Second
	DefaultBackoffUnit = time.Second
)

var (
	ErrEmptyBody = errors.New("empty response body")
	ErrNoTask    = errors.New("nil task")
)

// Task is one remote resource bound to one local file.
// Attempts is written only by the Fetcher running the task.
type Task struct {
	URL         string
	Dest        string
	Attempts    int
	MaxAttempts int
}

func NewTask(url, dest string, maxAttempts int) *Task {
	return &Task{URL: url, Dest: dest, MaxAttempts: maxAttempts}
}

func (t *Task) budget() int {
	if t.MaxAttempts < 1 {
		return DefaultMaxAttempts
	}
	return t.MaxAttempts
}

// Result is the terminal state of a Task. Err is nil on success.
type Result struct {
	Task  *Task
	Bytes int64
	Err   error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Backoff returns the wait after the failed attempt with the given zero-based
// index: unit, 2*unit, 4*unit, ...
func Backoff(attempt int, unit time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	return unit * time.Duration(1<<attempt)
}

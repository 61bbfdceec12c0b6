package scheduler

import (
	"context"
	"time"
)

// Status is the lifecycle state of one task.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusTimeout
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is one of the final states.
func (s Status) Terminal() bool {
	return s >= StatusSuccess
}

// IsFailure reports whether s counts as a failure (Failed or Timeout).
func (s Status) IsFailure() bool {
	return s == StatusFailed || s == StatusTimeout
}

// Func is the deferred work of a task. A non-nil error turns into a Failed
// result carrying the error's message.
type Func func(ctx context.Context) (any, error)

// Task is one unit of work submitted to the scheduler.
type Task struct {
	ID  string
	Run Func
}

// Result is the terminal outcome of a task. Value is only set on success,
// Message only on failure.
type Result struct {
	Status  Status
	Value   any
	Message string
}

// Success reports whether the task succeeded.
func (r Result) Success() bool { return r.Status == StatusSuccess }

// Outcome pairs a task ID with its result.
type Outcome struct {
	ID       string
	Result   Result
	Duration time.Duration
}

// TaskState is the scheduler-side bookkeeping for one task.
type TaskState struct {
	Status      Status
	StartedAt   time.Time
	CompletedAt time.Time
}

// Options configures a Scheduler.
type Options struct {
	// MaxConcurrency caps the number of running tasks. Values below 1 mean
	// runtime.NumCPU().
	MaxConcurrency int
	// Timeout bounds each task. Zero disables it.
	Timeout time.Duration
	// FailFast stops dispatching after the first Failed or Timeout result.
	FailFast bool
	// Verbose logs every task transition at debug level.
	Verbose bool
	// OnProgress is called once per terminal task with the number of tasks
	// finished so far in the batch and the batch size.
	OnProgress func(completed, total int)
	// OnTaskStarted is called when a task enters the running state.
	OnTaskStarted func(id string)
	// OnTaskCompleted is called once per terminal task. The result's Value is
	// always nil.
	OnTaskCompleted func(id string, r Result)
}

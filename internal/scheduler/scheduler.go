package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/inmemorystore"
)

// Scheduler runs task batches. A Scheduler may run several batches one after
// another; its counters accumulate across them.
type Scheduler struct {
	opts Options
	sem  *semaphore.Weighted

	// mu orders the Running transition, terminal transitions and the stop
	// flag.
	mu     sync.Mutex
	states *inmemorystore.Store[TaskState]

	completed  atomic.Int64
	successful atomic.Int64
	failed     atomic.Int64
	stopped    atomic.Bool

	// stop aborts permit acquisition of the running batch.
	stopMu sync.Mutex
	stop   context.CancelFunc
}

// New creates a scheduler.
func New(opts Options) *Scheduler {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = runtime.NumCPU()
	}
	return &Scheduler{
		opts:   opts,
		sem:    semaphore.NewWeighted(int64(opts.MaxConcurrency)),
		states: inmemorystore.New[TaskState](),
	}
}

// MaxConcurrency returns the effective concurrency limit.
func (s *Scheduler) MaxConcurrency() int { return s.opts.MaxConcurrency }

// CompletedCount returns the number of tasks in a terminal state.
func (s *Scheduler) CompletedCount() int { return int(s.completed.Load()) }

// SuccessfulCount returns the number of successful tasks.
func (s *Scheduler) SuccessfulCount() int { return int(s.successful.Load()) }

// FailedCount returns the number of Failed or Timeout tasks.
func (s *Scheduler) FailedCount() int { return int(s.failed.Load()) }

// Stopped reports whether dispatching has been stopped.
func (s *Scheduler) Stopped() bool { return s.stopped.Load() }

// State returns the bookkeeping of a task.
func (s *Scheduler) State(id string) (TaskState, bool) { return s.states.Get(id) }

// StopAll prevents any not yet running task from starting. Running tasks
// continue. It is safe to call from any goroutine.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	s.stopped.Store(true)
	s.mu.Unlock()

	s.stopMu.Lock()
	if s.stop != nil {
		s.stop()
	}
	s.stopMu.Unlock()
}

type event struct {
	id        string
	result    Result
	completed int
}

// ExecuteBatch runs tasks and returns after every one of them has reached a
// terminal state. The result slice has one entry per task, in submission
// order. Cancelling ctx cancels running payloads and marks the rest
// Cancelled.
func (s *Scheduler) ExecuteBatch(ctx context.Context, tasks []Task) []Outcome {
	logger := ctxlog.FromContext(ctx).With("batch_size", len(tasks), "max_concurrency", s.opts.MaxConcurrency)
	logger.Debug("Executing batch.")

	acquireCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.stopMu.Lock()
	s.stop = cancel
	s.stopMu.Unlock()
	if s.stopped.Load() {
		cancel()
	}

	total := len(tasks)
	outcomes := make([]Outcome, total)
	for _, t := range tasks {
		s.states.Set(t.ID, TaskState{Status: StatusPending})
	}

	events := make(chan event, total)
	delivered := make(chan struct{})
	go s.deliver(events, total, delivered)

	var finished int
	var wg sync.WaitGroup
	for i, t := range tasks {
		if err := s.sem.Acquire(acquireCtx, 1); err != nil {
			outcomes[i] = s.cancelPending(t.ID, &finished, events)
			continue
		}
		s.mu.Lock()
		if s.stopped.Load() || ctx.Err() != nil {
			s.mu.Unlock()
			s.sem.Release(1)
			outcomes[i] = s.cancelPending(t.ID, &finished, events)
			continue
		}
		started := time.Now()
		s.states.Set(t.ID, TaskState{Status: StatusRunning, StartedAt: started})
		s.mu.Unlock()

		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			defer s.sem.Release(1)

			if s.opts.OnTaskStarted != nil {
				s.opts.OnTaskStarted(t.ID)
			}
			if s.opts.Verbose {
				logger.Debug("Task started.", "task", t.ID)
			}
			res := s.invoke(ctx, t)

			s.mu.Lock()
			end := time.Now()
			s.states.Set(t.ID, TaskState{Status: res.Status, StartedAt: started, CompletedAt: end})
			s.count(res.Status)
			if s.opts.FailFast && res.Status.IsFailure() {
				s.stopped.Store(true)
				cancel()
			}
			finished++
			events <- event{id: t.ID, result: Result{Status: res.Status, Message: res.Message}, completed: finished}
			s.mu.Unlock()

			if s.opts.Verbose {
				logger.Debug("Task finished.", "task", t.ID, "status", res.Status, "duration", end.Sub(started))
			}
			outcomes[i] = Outcome{ID: t.ID, Result: res, Duration: end.Sub(started)}
		}(i, t)
	}

	wg.Wait()
	close(events)
	<-delivered

	logger.Debug("Batch finished.", "completed", s.CompletedCount(), "failed", s.FailedCount())
	return outcomes
}

// cancelPending marks a task that never started as Cancelled.
func (s *Scheduler) cancelPending(id string, finished *int, events chan<- event) Outcome {
	res := Result{Status: StatusCancelled, Message: "cancelled before start"}
	s.mu.Lock()
	s.states.Set(id, TaskState{Status: StatusCancelled, CompletedAt: time.Now()})
	s.count(StatusCancelled)
	*finished++
	events <- event{id: id, result: res, completed: *finished}
	s.mu.Unlock()
	return Outcome{ID: id, Result: res}
}

// count must be called with mu held.
func (s *Scheduler) count(st Status) {
	s.completed.Add(1)
	switch {
	case st == StatusSuccess:
		s.successful.Add(1)
	case st.IsFailure():
		s.failed.Add(1)
	}
}

func (s *Scheduler) deliver(events <-chan event, total int, done chan<- struct{}) {
	defer close(done)
	for ev := range events {
		if s.opts.OnTaskCompleted != nil {
			s.opts.OnTaskCompleted(ev.id, ev.result)
		}
		if s.opts.OnProgress != nil {
			s.opts.OnProgress(ev.completed, total)
		}
	}
}

type payloadResult struct {
	value any
	err   error
}

// invoke runs the payload, bounded by the configured timeout.
func (s *Scheduler) invoke(ctx context.Context, t Task) Result {
	runCtx := ctx
	var cancel context.CancelFunc
	if s.opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan payloadResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- payloadResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		if t.Run == nil {
			done <- payloadResult{err: errors.New("task has no work")}
			return
		}
		v, err := t.Run(runCtx)
		done <- payloadResult{value: v, err: err}
	}()

	select {
	case r := <-done:
		switch {
		case r.err == nil:
			return Result{Status: StatusSuccess, Value: r.value}
		case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			return timeoutResult(s.opts.Timeout)
		case ctx.Err() != nil:
			return Result{Status: StatusCancelled, Message: r.err.Error()}
		default:
			return Result{Status: StatusFailed, Message: r.err.Error()}
		}
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return Result{Status: StatusCancelled, Message: ctx.Err().Error()}
		}
		return timeoutResult(s.opts.Timeout)
	}
}

func timeoutResult(d time.Duration) Result {
	return Result{Status: StatusTimeout, Message: fmt.Sprintf("timed out after %s", d)}
}

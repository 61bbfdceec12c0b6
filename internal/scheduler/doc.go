// Package scheduler runs batches of independent tasks with bounded
// concurrency.
//
// # Why Scheduler Exists
//
// Every workflow that fans out work (running one script per package in a
// stage, asking the registry for the latest version of each dependency)
// needs the same things: a cap on parallelism, per-task timeouts, a uniform
// result shape, fail-fast cancellation and live progress. The scheduler
// provides them once so the orchestrator only has to describe the work.
//
// # How It Works
//
// ExecuteBatch walks the submitted tasks in order:
//  1. Acquire a permit from a weighted semaphore of size MaxConcurrency.
//  2. Under the dispatch mutex, check the stop flag. A stopped batch marks
//     the task Cancelled; otherwise the task is marked Running.
//  3. Run the payload in its own goroutine, bounded by Timeout.
//  4. Under the same mutex, record the terminal state, bump the counters and
//     raise the stop flag when FailFast is set and the task failed.
//  5. Release the permit.
//
// Because the Running transition and the stop flag share one mutex, no task
// starts after a fail-fast failure has been recorded.
//
// # Callbacks
//
// Terminal events are queued under the dispatch mutex and delivered by a
// single goroutine, so OnProgress sees a strictly increasing count and both
// callbacks run without any scheduler lock held. Callbacks must not call
// back into the scheduler.
//
// # Timeouts
//
// A payload receives a context that is cancelled at the deadline. A payload
// that ignores it is abandoned: its result is Timeout and its goroutine is
// left to finish in the background.
package scheduler

package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/monox/internal/localexecutor"
)

// Invocation is one call observed by FakeRunner.
type Invocation struct {
	Dir  string
	Name string
	Args []string
}

// Behavior scripts how FakeRunner answers for one package folder.
type Behavior struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Delay    time.Duration
	// FailTimes makes the first N invocations exit with ExitCode 1 before
	// succeeding. It is ignored when ExitCode is non-zero.
	FailTimes int
}

// FakeRunner implements localexecutor.Runner without spawning processes.
// Behaviors are keyed by the base name of the working directory.
type FakeRunner struct {
	mu          sync.Mutex
	behaviors   map[string]Behavior
	calls       []Invocation
	attempts    map[string]int
	Concurrency *ConcurrencyRecorder
}

// NewFakeRunner creates a runner where every invocation succeeds immediately
// unless a behavior says otherwise.
func NewFakeRunner(behaviors map[string]Behavior) *FakeRunner {
	if behaviors == nil {
		behaviors = map[string]Behavior{}
	}
	return &FakeRunner{
		behaviors:   behaviors,
		attempts:    make(map[string]int),
		Concurrency: NewConcurrencyRecorder(),
	}
}

// Run implements localexecutor.Runner.
func (f *FakeRunner) Run(ctx context.Context, dir, name string, args ...string) (*localexecutor.Output, error) {
	key := filepath.Base(dir)

	f.mu.Lock()
	f.calls = append(f.calls, Invocation{Dir: dir, Name: name, Args: append([]string(nil), args...)})
	b := f.behaviors[key]
	f.attempts[key]++
	attempt := f.attempts[key]
	f.mu.Unlock()

	done := f.Concurrency.Enter(key)
	defer done()

	if b.Delay > 0 {
		select {
		case <-time.After(b.Delay):
		case <-ctx.Done():
			return &localexecutor.Output{ExitCode: -1}, ctx.Err()
		}
	}

	code := b.ExitCode
	if code == 0 && attempt <= b.FailTimes {
		code = 1
	}
	out := &localexecutor.Output{Stdout: b.Stdout, Stderr: b.Stderr, ExitCode: code}
	if code != 0 {
		return out, &localexecutor.ExitError{
			Command: strings.TrimSpace(name + " " + strings.Join(args, " ")),
			Code:    code,
			Stderr:  b.Stderr,
		}
	}
	return out, nil
}

// Calls returns a snapshot of every invocation so far.
func (f *FakeRunner) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}

// Dirs returns the base names of the working directories, in call order.
func (f *FakeRunner) Dirs() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = filepath.Base(c.Dir)
	}
	return out
}

// Attempts returns how many times the given folder was invoked.
func (f *FakeRunner) Attempts(folder string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[folder]
}

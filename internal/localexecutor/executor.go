// Package localexecutor runs package-manager commands as child processes on
// the local machine and captures their output.
package localexecutor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/specialistvlad/monox/internal/ctxlog"
)

// waitDelay bounds how long Wait keeps reading pipes after the child was
// killed, for grandchildren that inherited them.
const waitDelay = 5 * time.Second

// Output is what a finished child process left behind.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError reports a child process that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

// Runner launches one child process and waits for it.
type Runner interface {
	// Run executes name with args in dir. Output is returned whenever the
	// process started, even if it then failed.
	Run(ctx context.Context, dir, name string, args ...string) (*Output, error)
}

// Executor is the os/exec backed Runner. The child is killed when ctx is done.
type Executor struct {
	// Env is appended to the inherited environment.
	Env []string
}

// New creates a local executor.
func New(env ...string) *Executor {
	return &Executor{Env: env}
}

// Run implements Runner.
func (e *Executor) Run(ctx context.Context, dir, name string, args ...string) (*Output, error) {
	logger := ctxlog.FromContext(ctx)
	command := strings.TrimSpace(name + " " + strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Starting child process.", "command", command, "dir", dir)
	start := time.Now()
	err := cmd.Run()
	out := &Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	if err == nil {
		logger.Debug("Child process finished.", "command", command, "duration", out.Duration)
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s: %w", command, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, &ExitError{Command: command, Code: exitErr.ExitCode(), Stderr: out.Stderr}
	}
	return nil, fmt.Errorf("failed to start %s: %w", command, err)
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

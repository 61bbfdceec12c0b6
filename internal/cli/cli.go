package cli

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/monox/internal/app"
)

// Exit codes returned through ExitError.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// commandError marks an error returned by a command body. Anything reaching
// Execute without this mark was raised by cobra while parsing arguments.
type commandError struct{ err error }

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

func failed(err error) error {
	if err == nil {
		return nil
	}
	return &commandError{err: err}
}

func usage(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// Execute runs the command line args against the given streams and converts
// the outcome into an *ExitError: code 1 for fatal errors, failed tasks and
// health issues, code 2 for invalid usage.
func Execute(ctx context.Context, version string, args []string, in io.Reader, out, errOut io.Writer, opts ...app.Option) error {
	root := NewRootCmd(version, opts...)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return &ExitError{Code: ExitFailure, Message: cmdErr.Error()}
	}
	return usage(err)
}

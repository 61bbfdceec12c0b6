package registry

import (
	"context"
	"errors"
	"time"
)

// ErrLookupFailed is wrapped by every error returned from a Client.
var ErrLookupFailed = errors.New("registry lookup failed")

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 30 * time.Second

// Client resolves the latest published version of a dependency.
type Client interface {
	Latest(ctx context.Context, name string) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, name string) (string, error)

// Latest implements Client.
func (f ClientFunc) Latest(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

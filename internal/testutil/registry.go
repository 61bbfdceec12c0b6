package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeRegistry answers latest-version queries from a fixed table. Names that
// are not in the table fail the lookup.
type FakeRegistry struct {
	mu       sync.Mutex
	versions map[string]string
	queries  map[string]int
	Delay    time.Duration
}

// NewFakeRegistry creates a registry answering from versions.
func NewFakeRegistry(versions map[string]string) *FakeRegistry {
	return &FakeRegistry{versions: versions, queries: make(map[string]int)}
}

// Latest implements the registry client contract.
func (r *FakeRegistry) Latest(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	r.queries[name]++
	v, ok := r.versions[name]
	r.mu.Unlock()

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if !ok {
		return "", fmt.Errorf("lookup failed: unknown package %q", name)
	}
	return v, nil
}

// Queries returns how many times name was looked up.
func (r *FakeRegistry) Queries(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[name]
}

// TotalQueries returns the number of lookups across all names.
func (r *FakeRegistry) TotalQueries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.queries {
		total += n
	}
	return total
}

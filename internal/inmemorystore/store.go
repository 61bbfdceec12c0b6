package inmemorystore

import (
	"sort"
	"sync"
)

// Store is an RWMutex-guarded map from string keys to values of type V.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// New creates a new, empty store.
func New[V any]() *Store[V] {
	return &Store[V]{entries: make(map[string]V)}
}

// Set stores v under key, replacing any previous value.
func (s *Store[V]) Set(key string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = v
}

// Get returns the value stored under key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Update applies fn to the current value under the write lock and stores the
// result. fn receives the zero value and false when the key is absent. The
// returned bool reports whether fn asked to keep the change.
func (s *Store[V]) Update(key string, fn func(cur V, ok bool) (V, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[key]
	next, keep := fn(cur, ok)
	if keep {
		s.entries[key] = next
	}
	return keep
}

// Len returns the number of entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns every key in sorted order.
func (s *Store[V]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the whole store.
func (s *Store[V]) Snapshot() map[string]V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]V, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// key/value store for execution state.
//
// # Purpose
//
// The scheduler keeps one entry per submitted task (status, timestamps,
// result). The store lives for a single batch and is discarded with it.
//
// # Concurrency Model
//
// A sync.RWMutex guards a plain map. Progress readers take the read lock
// while workers take the write lock for the brief moment of a state
// transition. Update runs a mutation under the write lock so that
// check-and-set sequences are atomic.
package inmemorystore

package testutil

import (
	"sync"
	"time"
)

// ExecutionRecord holds the start and end times for a single task's execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// ConcurrencyRecorder tracks how many units of work run at the same time.
type ConcurrencyRecorder struct {
	mu      sync.Mutex
	running int
	peak    int
	records map[string]*ExecutionRecord
	order   []string
}

// NewConcurrencyRecorder creates an empty recorder.
func NewConcurrencyRecorder() *ConcurrencyRecorder {
	return &ConcurrencyRecorder{records: make(map[string]*ExecutionRecord)}
}

// Enter marks id as running and returns the function that marks it done.
func (r *ConcurrencyRecorder) Enter(id string) func() {
	r.mu.Lock()
	r.running++
	if r.running > r.peak {
		r.peak = r.running
	}
	r.records[id] = &ExecutionRecord{Start: time.Now()}
	r.order = append(r.order, id)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.running--
		r.records[id].End = time.Now()
	}
}

// Peak returns the highest number of simultaneously running units observed.
func (r *ConcurrencyRecorder) Peak() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

// Started returns the ids in the order they started.
func (r *ConcurrencyRecorder) Started() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Record returns the execution record of id.
func (r *ConcurrencyRecorder) Record(id string) (ExecutionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return ExecutionRecord{}, false
	}
	return *rec, true
}

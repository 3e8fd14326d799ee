package aggregate

import (
	"sync"
)

// MethodAggregate holds the observed durations for one method during a
// capture session. The average is maintained incrementally on each append.
type MethodAggregate struct {
	DurationsMS       []float64 `json:"durations_ms"`
	LastDurationMS    float64   `json:"last_duration_ms"`
	AverageDurationMS float64   `json:"average_duration_ms"`
}

// Key returns the aggregation key for a method, owner.operation.
func Key(owner, operation string) string {
	return owner + "." + operation
}

// Registry aggregates per-method statistics for the lifetime of a capture
// session. It is safe for concurrent use; ingestion appends while a reader
// may freeze a snapshot at any time.
type Registry struct {
	mu      sync.Mutex
	methods map[string]*MethodAggregate
}

func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]*MethodAggregate)}
}

// Observe records one execution of owner.operation.
func (r *Registry) Observe(owner, operation string, durationMS float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := Key(owner, operation)
	agg, ok := r.methods[key]
	if !ok {
		agg = &MethodAggregate{}
		r.methods[key] = agg
	}
	agg.DurationsMS = append(agg.DurationsMS, durationMS)
	agg.LastDurationMS = durationMS
	agg.AverageDurationMS += (durationMS - agg.AverageDurationMS) / float64(len(agg.DurationsMS))
}

// Snapshot returns a frozen copy of the aggregates, independent of later
// observations.
func (r *Registry) Snapshot() map[string]MethodAggregate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]MethodAggregate, len(r.methods))
	for key, agg := range r.methods {
		durations := make([]float64, len(agg.DurationsMS))
		copy(durations, agg.DurationsMS)
		out[key] = MethodAggregate{
			DurationsMS:       durations,
			LastDurationMS:    agg.LastDurationMS,
			AverageDurationMS: agg.AverageDurationMS,
		}
	}
	return out
}

// Len returns the number of distinct methods observed.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.methods)
}

// TotalCalls returns the number of executions observed across all methods.
func (r *Registry) TotalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, agg := range r.methods {
		total += len(agg.DurationsMS)
	}
	return total
}

// Clear drops all aggregates.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = make(map[string]*MethodAggregate)
}

package eventstore

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/methodlens/methodlens/internal/calltree"
	"github.com/methodlens/methodlens/internal/event"
)

const (
	// DefaultCapacity is the default bound on live events.
	DefaultCapacity = 10000
	// DefaultRetention is the default age window for live events.
	DefaultRetention = 5 * time.Minute
)

// Store owns the live call events for a capture. Inserts and evictions are
// guarded by a single mutual-exclusion boundary; reads take a bounded
// point-in-time clone under the same boundary and release it before any
// tree construction happens.
type Store struct {
	mu        sync.Mutex
	events    map[string]event.CallEvent
	capacity  int
	retention time.Duration
	now       func() time.Time
}

// New returns an empty store. Non-positive capacity or retention fall back
// to the defaults.
func New(capacity int, retention time.Duration) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	s := &Store{
		events:    make(map[string]event.CallEvent),
		capacity:  capacity,
		retention: retention,
		now:       time.Now,
	}
	return s
}

// Add validates and inserts an event. A duplicate call id overwrites the
// previous record. When the store is full, a cleanup pass runs first;
// capacity pressure is never an error.
func (s *Store) Add(e event.CallEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[e.CallID]; !exists && len(s.events) >= s.capacity {
		s.cleanupLocked()
	}
	s.events[e.CallID] = e
	return nil
}

// cleanupLocked evicts events older than the retention window, then, if the
// store is still full, the oldest events by start time until one slot is
// free. Must be called with the store locked.
func (s *Store) cleanupLocked() {
	cutoffMS := float64(s.now().Add(-s.retention).UnixMilli())
	evicted := 0
	for id, e := range s.events {
		if e.StartedAtMS < cutoffMS {
			delete(s.events, id)
			evicted++
		}
	}

	if len(s.events) >= s.capacity {
		remaining := make([]event.CallEvent, 0, len(s.events))
		for _, e := range s.events {
			remaining = append(remaining, e)
		}
		sort.Slice(remaining, func(i, j int) bool {
			if remaining[i].StartedAtMS != remaining[j].StartedAtMS {
				return remaining[i].StartedAtMS < remaining[j].StartedAtMS
			}
			return remaining[i].CallID < remaining[j].CallID
		})
		for _, e := range remaining {
			if len(s.events) < s.capacity {
				break
			}
			delete(s.events, e.CallID)
			evicted++
		}
	}

	if evicted > 0 {
		log.Debug().
			Int("evicted", evicted).
			Int("remaining", len(s.events)).
			Msg("event store cleanup")
	}
}

// BuildForest reconstructs the call-tree forest from a consistent snapshot
// of the current contents. The returned forest is independent of later
// store mutation.
func (s *Store) BuildForest() []*calltree.Node {
	s.mu.Lock()
	snapshot := make([]event.CallEvent, 0, len(s.events))
	for _, e := range s.events {
		snapshot = append(snapshot, e)
	}
	s.mu.Unlock()
	return calltree.Build(snapshot)
}

// Clear drops all live events.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]event.CallEvent)
}

// Len returns the number of live events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

package capture

import (
	"time"

	"github.com/google/uuid"

	"github.com/methodlens/methodlens/internal/aggregate"
	"github.com/methodlens/methodlens/internal/event"
	"github.com/methodlens/methodlens/internal/eventstore"
	"github.com/methodlens/methodlens/internal/flamegraph"
	"github.com/methodlens/methodlens/internal/snapshot"
)

// Session ties the live event store and the per-method registry together
// for one capture period. Ingestion may run concurrently with reads; the
// session itself holds no extra locking beyond its parts.
type Session struct {
	ID        string
	store     *eventstore.Store
	registry  *aggregate.Registry
	startedAt time.Time
	now       func() time.Time
}

// NewSession starts a capture over the given store.
func NewSession(store *eventstore.Store) *Session {
	return &Session{
		ID:        uuid.New().String(),
		store:     store,
		registry:  aggregate.NewRegistry(),
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Ingest validates a batch and, only if every record conforms, stores and
// aggregates it. A malformed record rejects the whole batch before any
// state changes.
func (s *Session) Ingest(events ...event.CallEvent) error {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	for _, e := range events {
		_ = s.store.Add(e)
		s.registry.Observe(e.Owner, e.Operation, e.DurationMS)
	}
	return nil
}

// Flamegraph projects the current call-tree forest.
func (s *Session) Flamegraph() flamegraph.Output {
	return flamegraph.Project(s.store.BuildForest())
}

// Finish freezes the session into a snapshot. The snapshot id is the
// capture-end timestamp in unix milliseconds.
func (s *Session) Finish(name, vcsBranch, vcsRevision string) *snapshot.Snapshot {
	end := s.now()
	methods := s.registry.Snapshot()
	return &snapshot.Snapshot{
		ID:          end.UnixMilli(),
		Name:        snapshot.SanitizeName(name),
		CreatedAtMS: end.UnixMilli(),
		VCSBranch:   vcsBranch,
		VCSRevision: vcsRevision,
		Methods:     methods,
		CallTrees:   s.store.BuildForest(),
		Summary: snapshot.Summary{
			MethodCount:    len(methods),
			TotalCallCount: s.registry.TotalCalls(),
			CaptureStartMS: s.startedAt.UnixMilli(),
			CaptureEndMS:   end.UnixMilli(),
		},
	}
}

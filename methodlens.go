// Package methodlens turns method-execution events from an instrumented
// client into flame graphs and snapshot regression reports. The heavy
// lifting lives in the internal packages; this package wires them together
// from a single configuration.
package methodlens

import (
	"context"
	"os"
	"sync"

	"gocloud.dev/blob/fileblob"

	"github.com/methodlens/methodlens/internal/aggregate"
	"github.com/methodlens/methodlens/internal/capture"
	"github.com/methodlens/methodlens/internal/comparison"
	"github.com/methodlens/methodlens/internal/config"
	"github.com/methodlens/methodlens/internal/event"
	"github.com/methodlens/methodlens/internal/eventstore"
	"github.com/methodlens/methodlens/internal/flamegraph"
	"github.com/methodlens/methodlens/internal/logutil"
	"github.com/methodlens/methodlens/internal/snapshot"
	"github.com/methodlens/methodlens/internal/storageprovider"
)

// Aliases so callers can name the engine's inputs and outputs without
// reaching into internal packages.
type (
	CallEvent        = event.CallEvent
	FlamegraphOutput = flamegraph.Output
	FlamegraphNode   = flamegraph.Node
	MethodAggregate  = aggregate.MethodAggregate
	Snapshot         = snapshot.Snapshot
	SnapshotStore    = snapshot.Store
	Report           = comparison.Report
	ComparisonEntry  = comparison.Entry
	Classification   = comparison.Classification
	Config           = config.Config
)

// Classifications a comparison entry can carry.
const (
	ClassificationImproved  = comparison.ClassificationImproved
	ClassificationRegressed = comparison.ClassificationRegressed
	ClassificationNew       = comparison.ClassificationNew
	ClassificationRemoved   = comparison.ClassificationRemoved
	ClassificationUnchanged = comparison.ClassificationUnchanged
)

// Re-exported errors callers are expected to branch on.
var (
	ErrInvalidEvent     = event.ErrInvalidEvent
	ErrInvalidThreshold = comparison.ErrInvalidThreshold
	ErrDecode           = snapshot.ErrDecode
	ErrSnapshotNotFound = snapshot.ErrSnapshotNotFound
)

// ConfigureLogging sets up the global zerolog logger for hosts that don't
// bring their own configuration.
func ConfigureLogging() { logutil.ConfigureLogger() }

// LoadConfig reads a YAML config file with environment overrides.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// LoadConfigFromEnv builds a config from environment variables alone.
func LoadConfigFromEnv() (Config, error) { return config.LoadEnv() }

// Engine owns one live capture over a bounded event store. Ingestion may
// run concurrently with reads; FinishCapture atomically starts the next
// session.
type Engine struct {
	cfg config.Config

	mu      sync.Mutex
	store   *eventstore.Store
	session *capture.Session
}

// New builds an engine from a config.
func New(cfg Config) *Engine {
	store := eventstore.New(cfg.EventCapacity, cfg.EventRetention)
	return &Engine{
		cfg:     cfg,
		store:   store,
		session: capture.NewSession(store),
	}
}

func (e *Engine) currentSession() *capture.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Ingest validates and records a batch of call events.
func (e *Engine) Ingest(events ...CallEvent) error {
	return e.currentSession().Ingest(events...)
}

// Flamegraph projects the live call-tree forest into a render-ready tree.
func (e *Engine) Flamegraph() FlamegraphOutput {
	return e.currentSession().Flamegraph()
}

// FinishCapture freezes the current session into a snapshot and starts a
// fresh one over an emptied store.
func (e *Engine) FinishCapture(name, vcsBranch, vcsRevision string) *Snapshot {
	e.mu.Lock()
	session := e.session
	snap := session.Finish(name, vcsBranch, vcsRevision)
	e.store.Clear()
	e.session = capture.NewSession(e.store)
	e.mu.Unlock()
	return snap
}

// Compare diffs two snapshots' method aggregates with the configured
// regression threshold.
func (e *Engine) Compare(baseline, current *Snapshot) (Report, error) {
	threshold := e.cfg.RegressionThreshold
	if threshold == 0 {
		threshold = comparison.DefaultThresholdPercent
	}
	return comparison.Compare(baseline.Methods, current.Methods, threshold)
}

// OpenSnapshotStore opens the on-disk snapshot store under the configured
// directory, creating it if needed, and runs the initial eviction pass.
func (e *Engine) OpenSnapshotStore(ctx context.Context) (*SnapshotStore, error) {
	if err := os.MkdirAll(e.cfg.SnapshotDir, 0o755); err != nil {
		return nil, err
	}
	bucket, err := fileblob.OpenBucket(e.cfg.SnapshotDir, nil)
	if err != nil {
		return nil, err
	}
	return snapshot.OpenStore(ctx, &storageprovider.Blob{Bucket: bucket}, e.cfg.SnapshotMaxCount, e.cfg.SnapshotMaxAge)
}

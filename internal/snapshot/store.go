package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/methodlens/methodlens/internal/storageutil"
)

const (
	// DefaultMaxCount is the number of persisted snapshots kept before the
	// oldest are dropped.
	DefaultMaxCount = 50
	// DefaultMaxAge is how long a persisted snapshot is kept.
	DefaultMaxAge = 30 * 24 * time.Hour

	objectSuffix = ".snap.lz4"
)

// ErrSnapshotNotFound indicates a snapshot id was not found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store persists encoded snapshots through an ObjectHandler and enforces
// the count/age eviction policy. Eviction runs on open and after every
// save; eviction failures are logged, not fatal.
type Store struct {
	objects  storageutil.ObjectHandler
	maxCount int
	maxAge   time.Duration
	now      func() time.Time
}

// OpenStore returns a store over the given object handler and runs an
// initial eviction pass. Non-positive limits fall back to the defaults.
func OpenStore(ctx context.Context, objects storageutil.ObjectHandler, maxCount int, maxAge time.Duration) (*Store, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	st := &Store{
		objects:  objects,
		maxCount: maxCount,
		maxAge:   maxAge,
		now:      time.Now,
	}
	st.Evict(ctx)
	return st, nil
}

// ObjectName returns the deterministic object name for a snapshot.
func ObjectName(createdAtMS int64, name string) string {
	return fmt.Sprintf("%d_%s%s", createdAtMS, SanitizeName(name), objectSuffix)
}

// parseObjectName extracts the creation timestamp from an object name.
func parseObjectName(name string) (int64, bool) {
	if !strings.HasSuffix(name, objectSuffix) {
		return 0, false
	}
	idx := strings.IndexByte(name, '_')
	if idx <= 0 {
		return 0, false
	}
	createdAtMS, err := strconv.ParseInt(name[:idx], 10, 64)
	if err != nil {
		return 0, false
	}
	return createdAtMS, true
}

// Save encodes and persists a snapshot, then runs an eviction pass. It
// returns the object name the snapshot was stored under.
func (st *Store) Save(ctx context.Context, s *Snapshot) (string, error) {
	data, err := Encode(s)
	if err != nil {
		return "", err
	}
	name := ObjectName(s.CreatedAtMS, s.Name)
	w, err := st.objects.Put(ctx, name)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	st.Evict(ctx)
	return name, nil
}

// Load reads and decodes the snapshot stored under the given object name.
func (st *Store) Load(ctx context.Context, name string) (*Snapshot, error) {
	r, err := st.objects.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Find loads a snapshot by its id.
func (st *Store) Find(ctx context.Context, id int64) (*Snapshot, error) {
	names, err := st.objects.List(ctx, fmt.Sprintf("%d_", id))
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if createdAtMS, ok := parseObjectName(name); ok && createdAtMS == id {
			return st.Load(ctx, name)
		}
	}
	return nil, ErrSnapshotNotFound
}

// List returns the names of persisted snapshots, newest first.
func (st *Store) List(ctx context.Context) ([]string, error) {
	names, err := st.objects.List(ctx, "")
	if err != nil {
		return nil, err
	}
	valid := names[:0]
	for _, name := range names {
		if _, ok := parseObjectName(name); ok {
			valid = append(valid, name)
		}
	}
	sortByCreation(valid)
	return valid, nil
}

// Evict drops snapshots older than the age limit, then the oldest excess
// beyond the count limit. Failures are logged and skipped.
func (st *Store) Evict(ctx context.Context) {
	names, err := st.objects.List(ctx, "")
	if err != nil {
		log.Warn().Err(err).Msg("snapshot eviction: list failed")
		return
	}

	cutoffMS := st.now().Add(-st.maxAge).UnixMilli()
	kept := make([]string, 0, len(names))
	for _, name := range names {
		createdAtMS, ok := parseObjectName(name)
		if !ok {
			continue
		}
		if createdAtMS < cutoffMS {
			st.remove(ctx, name, "age")
			continue
		}
		kept = append(kept, name)
	}

	if len(kept) <= st.maxCount {
		return
	}
	sortByCreation(kept)
	for _, name := range kept[st.maxCount:] {
		st.remove(ctx, name, "count")
	}
}

func (st *Store) remove(ctx context.Context, name, reason string) {
	if err := st.objects.Delete(ctx, name); err != nil && !errors.Is(err, storageutil.ErrObjectNotFound) {
		log.Warn().Err(err).Str("snapshot", name).Msg("snapshot eviction: delete failed")
		return
	}
	log.Debug().Str("snapshot", name).Str("reason", reason).Msg("snapshot evicted")
}

func sortByCreation(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, _ := parseObjectName(names[i])
		b, _ := parseObjectName(names[j])
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
}

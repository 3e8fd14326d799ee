package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"gocloud.dev/blob/memblob"

	"github.com/methodlens/methodlens/internal/storageprovider"
	"github.com/methodlens/methodlens/internal/testutil"
)

var storeNow = time.UnixMilli(1_700_000_000_000)

func newTestStore(t *testing.T, maxCount int, maxAge time.Duration) *Store {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })
	st, err := OpenStore(context.Background(), &storageprovider.Blob{Bucket: bucket}, maxCount, maxAge)
	if err != nil {
		t.Fatal(err)
	}
	st.now = func() time.Time { return storeNow }
	return st
}

func namedSnapshot(name string, createdAtMS int64) *Snapshot {
	s := testSnapshot()
	s.Name = name
	s.ID = createdAtMS
	s.CreatedAtMS = createdAtMS
	return s
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, 10, DefaultMaxAge)

	original := namedSnapshot("baseline", storeNow.UnixMilli())
	name, err := st.Save(ctx, original)
	if err != nil {
		t.Fatal(err)
	}
	if want := ObjectName(original.CreatedAtMS, "baseline"); name != want {
		t.Fatalf("expected object name %s, got %s", want, name)
	}

	loaded, err := st.Load(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	if diff := testutil.Diff(original, loaded); diff != "" {
		t.Fatalf("loaded snapshot differs: %s", diff)
	}
}

func TestStoreFind(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, 10, DefaultMaxAge)

	s := namedSnapshot("baseline", storeNow.UnixMilli())
	if _, err := st.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	found, err := st.Find(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if found.Name != "baseline" {
		t.Fatalf("expected baseline, got %s", found.Name)
	}

	if _, err := st.Find(ctx, 42); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestStoreLoadNotFound(t *testing.T) {
	st := newTestStore(t, 10, DefaultMaxAge)
	_, err := st.Load(context.Background(), "123_missing.snap.lz4")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestStoreCountEviction(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, 2, DefaultMaxAge)

	base := storeNow.UnixMilli()
	for i := int64(0); i < 3; i++ {
		if _, err := st.Save(ctx, namedSnapshot("s", base-i)); err != nil {
			t.Fatal(err)
		}
	}

	names, err := st.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 snapshots after count eviction, got %d: %v", len(names), names)
	}
	// Newest first; the oldest (base-2) must be gone.
	want := []string{ObjectName(base, "s"), ObjectName(base-1, "s")}
	if diff := testutil.Diff(want, names); diff != "" {
		t.Fatalf("unexpected survivors: %s", diff)
	}
}

func TestStoreAgeEviction(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, 50, 30*24*time.Hour)

	stale := namedSnapshot("stale", storeNow.Add(-31*24*time.Hour).UnixMilli())
	fresh := namedSnapshot("fresh", storeNow.UnixMilli())
	if _, err := st.Save(ctx, stale); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	names, err := st.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{ObjectName(fresh.CreatedAtMS, "fresh")}
	if diff := testutil.Diff(want, names); diff != "" {
		t.Fatalf("expected only the fresh snapshot: %s", diff)
	}

	if _, err := st.Find(ctx, stale.ID); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected evicted snapshot to be gone, got %v", err)
	}
}

func TestStoreOpenRunsEviction(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })
	objects := &storageprovider.Blob{Bucket: bucket}

	// Plant a stale object directly, bypassing Save's eviction pass.
	stale := namedSnapshot("stale", storeNow.Add(-40*24*time.Hour).UnixMilli())
	data, err := Encode(stale)
	if err != nil {
		t.Fatal(err)
	}
	w, err := objects.Put(ctx, ObjectName(stale.CreatedAtMS, stale.Name))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	st, err := OpenStore(ctx, objects, 10, DefaultMaxAge)
	if err != nil {
		t.Fatal(err)
	}
	names, err := st.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("expected stale snapshot evicted on open, got %v", names)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := LoadEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EventCapacity != 10000 {
		t.Fatalf("expected default capacity 10000, got %d", cfg.EventCapacity)
	}
	if cfg.EventRetention != 5*time.Minute {
		t.Fatalf("expected default retention 5m, got %s", cfg.EventRetention)
	}
	if cfg.RegressionThreshold != 5.0 {
		t.Fatalf("expected default threshold 5.0, got %f", cfg.RegressionThreshold)
	}
	if cfg.SnapshotMaxCount != 50 {
		t.Fatalf("expected default max count 50, got %d", cfg.SnapshotMaxCount)
	}
	if cfg.SnapshotMaxAge != 720*time.Hour {
		t.Fatalf("expected default max age 720h, got %s", cfg.SnapshotMaxAge)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("METHODLENS_EVENT_CAPACITY", "256")
	t.Setenv("METHODLENS_EVENT_RETENTION", "90s")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EventCapacity != 256 {
		t.Fatalf("expected capacity 256, got %d", cfg.EventCapacity)
	}
	if cfg.EventRetention != 90*time.Second {
		t.Fatalf("expected retention 90s, got %s", cfg.EventRetention)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "methodlens.yaml")
	body := []byte("event_capacity: 123\nsnapshot_dir: /tmp/snapshots\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EventCapacity != 123 {
		t.Fatalf("expected capacity 123, got %d", cfg.EventCapacity)
	}
	if cfg.SnapshotDir != "/tmp/snapshots" {
		t.Fatalf("expected snapshot dir /tmp/snapshots, got %s", cfg.SnapshotDir)
	}
}

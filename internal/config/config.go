package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries the engine tunables. Values come from an optional YAML
// file with environment variables taking precedence.
type Config struct {
	EventCapacity       int           `yaml:"event_capacity" env:"METHODLENS_EVENT_CAPACITY" env-default:"10000"`
	EventRetention      time.Duration `yaml:"event_retention" env:"METHODLENS_EVENT_RETENTION" env-default:"5m"`
	RegressionThreshold float64       `yaml:"regression_threshold" env:"METHODLENS_REGRESSION_THRESHOLD" env-default:"5.0"`
	SnapshotDir         string        `yaml:"snapshot_dir" env:"METHODLENS_SNAPSHOT_DIR" env-default:".methodlens/snapshots"`
	SnapshotMaxCount    int           `yaml:"snapshot_max_count" env:"METHODLENS_SNAPSHOT_MAX_COUNT" env-default:"50"`
	SnapshotMaxAge      time.Duration `yaml:"snapshot_max_age" env:"METHODLENS_SNAPSHOT_MAX_AGE" env-default:"720h"`
}

// Load reads a YAML config file, applying environment overrides.
func Load(path string) (Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(path, &cfg)
	return cfg, err
}

// LoadEnv builds a config from environment variables and defaults alone.
func LoadEnv() (Config, error) {
	var cfg Config
	err := cleanenv.ReadEnv(&cfg)
	return cfg, err
}

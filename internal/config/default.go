package config

import (
	"github.com/twelveoclock/fastutil-concurrent/internal/storage"
	"github.com/twelveoclock/fastutil-concurrent/internal/storage/snapshot"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/logger"
	"github.com/twelveoclock/fastutil-concurrent/internal/workload"
)

// Default configuration values.
const (
	DefaultDataDir     = "fastutil-data/kv"
	DefaultSnapshotDir = "fastutil-data/snapshots"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log:     logger.DefaultConfig(),
		Storage: storage.DefaultKVConfig(DefaultDataDir),
		Snapshot: SnapshotSection{
			Dir:            DefaultSnapshotDir,
			RetentionCount: snapshot.DefaultRetentionCount,
			RetentionDays:  snapshot.DefaultRetentionDays,
		},
		Workload: workload.DefaultConfig(),
	}
}

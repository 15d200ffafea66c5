// Package config defines the fastutil-bench configuration.
//
// Values come from defaults, an optional YAML file, FASTUTIL_ environment
// variables and command-line flags, in increasing priority. See confloader.
package config

import (
	"github.com/twelveoclock/fastutil-concurrent/internal/storage"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/logger"
	"github.com/twelveoclock/fastutil-concurrent/internal/workload"
)

// Config is the root configuration.
type Config struct {
	Log      logger.Config    `koanf:"log" json:"log" yaml:"log"`
	Storage  storage.KVConfig `koanf:"storage" json:"storage" yaml:"storage"`
	Snapshot SnapshotSection  `koanf:"snapshot" json:"snapshot" yaml:"snapshot"`
	Workload workload.Config  `koanf:"workload" json:"workload" yaml:"workload"`
	Metrics  MetricsSection   `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// SnapshotSection configures snapshot files.
type SnapshotSection struct {
	Dir            string `koanf:"dir" json:"dir" yaml:"dir"`
	RetentionCount int    `koanf:"retention_count" json:"retention_count" yaml:"retention_count"`
	RetentionDays  int    `koanf:"retention_days" json:"retention_days" yaml:"retention_days"`

	// KeyFile holds a 32-byte sealing key, raw or hex encoded.
	KeyFile string `koanf:"key_file" json:"key_file" yaml:"key_file"`

	// Passphrase derives the sealing key when KeyFile is empty.
	// Prefer FASTUTIL_SNAPSHOT__PASSPHRASE over writing it to a file.
	Passphrase string `koanf:"passphrase" json:"passphrase" yaml:"passphrase"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	// Addr is the listen address of /metrics. Empty disables the endpoint.
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`
}

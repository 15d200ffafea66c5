package storage

import (
	"context"
	"io"
)

// KVEngine defines the interface for embedded key-value storage.
//
// Implementations must be safe for concurrent use and durable across
// process restarts (unless configured in-memory).
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key.
	Delete(ctx context.Context, key []byte) error

	// Scan iterates over keys with a given prefix.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// WriteBatch stores all pairs. The batch is not atomic as a whole.
	WriteBatch(ctx context.Context, pairs []KV) error

	// DropPrefix removes every key starting with prefix.
	DropPrefix(ctx context.Context, prefix []byte) error

	// Backup writes a full dump of the store to w.
	Backup(ctx context.Context, w io.Writer) error

	// Restore loads a dump produced by Backup on top of the current data.
	Restore(ctx context.Context, r io.Reader) error

	// GC triggers value log garbage collection.
	// Returns the number of rewritten value log files.
	GC(ctx context.Context) (uint64, error)

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*KVStats, error)

	// Close gracefully shuts down the engine. Further calls return ErrClosed.
	Close() error
}

// KV is a key-value pair.
type KV struct {
	Key   []byte
	Value []byte
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalSize is the total disk usage in bytes.
	TotalSize uint64 `json:"total_size" yaml:"total_size"`

	// LSMSize is the LSM tree size.
	LSMSize uint64 `json:"lsm_size" yaml:"lsm_size"`

	// ValueLogSize is the value log size.
	ValueLogSize uint64 `json:"value_log_size" yaml:"value_log_size"`

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64 `json:"last_gc_time" yaml:"last_gc_time"`

	// GCRuns is the number of value log files rewritten by GC.
	GCRuns uint64 `json:"gc_runs" yaml:"gc_runs"`
}

// KVConfig configures an embedded KV engine.
type KVConfig struct {
	// Dir is the storage directory. Ignored when InMemory is set.
	Dir string `koanf:"dir" json:"dir" yaml:"dir"`

	// InMemory keeps all data in memory.
	InMemory bool `koanf:"in_memory" json:"in_memory" yaml:"in_memory"`

	// Badger-specific configuration
	Badger BadgerConfig `koanf:"badger" json:"badger" yaml:"badger"`
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m
	GCInterval string `koanf:"gc_interval" json:"gc_interval" yaml:"gc_interval"`

	// GCThreshold is the discard ratio (0.0-1.0) a value log file must
	// reach before GC rewrites it.
	// Default: 0.5
	GCThreshold float64 `koanf:"gc_threshold" json:"gc_threshold" yaml:"gc_threshold"`

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64 `koanf:"cache_size" json:"cache_size" yaml:"cache_size"`

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB
	ValueLogFileSize int64 `koanf:"value_log_file_size" json:"value_log_file_size" yaml:"value_log_file_size"`

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int `koanf:"num_memtables" json:"num_memtables" yaml:"num_memtables"`

	// SyncWrites enables sync writes (fsync after each write).
	// Default: false
	SyncWrites bool `koanf:"sync_writes" json:"sync_writes" yaml:"sync_writes"`
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        64 << 20,  // 64MB
		ValueLogFileSize: 256 << 20, // 256MB
		NumMemtables:     2,
		SyncWrites:       false,
	}
}

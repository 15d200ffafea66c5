package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/twelveoclock/fastutil-concurrent/internal/storage/snapshot"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}

	if !cfg.Storage.InMemory && cfg.Storage.Dir == "" {
		return errors.New("storage.dir is required unless storage.in_memory is set")
	}
	if _, err := time.ParseDuration(cfg.Storage.Badger.GCInterval); err != nil {
		return fmt.Errorf("storage.badger.gc_interval: %w", err)
	}
	if t := cfg.Storage.Badger.GCThreshold; t <= 0 || t >= 1 {
		return fmt.Errorf("storage.badger.gc_threshold must be in (0, 1), got %v", t)
	}

	if cfg.Snapshot.Dir == "" {
		return errors.New("snapshot.dir is required")
	}

	if err := cfg.Workload.Validate(); err != nil {
		return err
	}
	return nil
}

// SnapshotConfig builds the snapshot manager configuration, reading the
// sealing key file if one is set. Callers should pass the returned key to
// snapshot.ZeroKey when done.
func (c *Config) SnapshotConfig() (snapshot.Config, error) {
	sc := snapshot.Config{
		Dir:            c.Snapshot.Dir,
		RetentionCount: c.Snapshot.RetentionCount,
		RetentionDays:  c.Snapshot.RetentionDays,
	}

	switch {
	case c.Snapshot.KeyFile != "":
		key, err := ReadKeyFile(c.Snapshot.KeyFile)
		if err != nil {
			return sc, err
		}
		sc.Seal.Key = key
	case c.Snapshot.Passphrase != "":
		sc.Seal.Passphrase = []byte(c.Snapshot.Passphrase)
	}

	if err := sc.Seal.Validate(); err != nil {
		return sc, fmt.Errorf("snapshot seal: %w", err)
	}
	return sc, nil
}

// ReadKeyFile reads a sealing key stored either as 32 raw bytes or as 64
// hex characters, optionally followed by a newline.
func ReadKeyFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	if len(raw) == snapshot.KeySize {
		return raw, nil
	}

	text := strings.TrimSpace(string(raw))
	key, err := hex.DecodeString(text)
	if err != nil || len(key) != snapshot.KeySize {
		return nil, fmt.Errorf("key file %s: %w", path, snapshot.ErrInvalidKey)
	}
	return key, nil
}

package command

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twelveoclock/fastutil-concurrent/internal/storage"
)

func TestPersist_SaveLoad(t *testing.T) {
	dir := t.TempDir()

	var saved saveResult
	runJSON(t, &saved, "persist", "save", "--dir", dir, "--entries", "300", "--name", "squares")
	assert.Equal(t, 300, saved.Saved)

	var loaded restoreResult
	runJSON(t, &loaded, "persist", "load", "--dir", dir, "--name", "squares", "--verify", "--stripes", "2")
	assert.Equal(t, 300, loaded.Restored)
	assert.Equal(t, 2, loaded.Stripes)
	assert.Zero(t, loaded.Mismatches)

	var counts map[string]int
	runJSON(t, &counts, "persist", "count", "--dir", dir, "--name", "squares")
	assert.Equal(t, 300, counts["squares"])

	_, _, err := runApp(t, "persist", "drop", "--dir", dir, "--name", "squares")
	require.NoError(t, err)
	runJSON(t, &counts, "persist", "count", "--dir", dir, "--name", "squares")
	assert.Equal(t, 0, counts["squares"])
}

func TestPersist_Set(t *testing.T) {
	dir := t.TempDir()

	var saved saveResult
	runJSON(t, &saved, "persist", "save", "--dir", dir, "--collection", "long-set", "--entries", "25", "--name", "evens")
	assert.Equal(t, 25, saved.Saved)

	var loaded restoreResult
	runJSON(t, &loaded, "persist", "load", "--dir", dir, "--collection", "long-set", "--name", "evens")
	assert.Equal(t, 25, loaded.Restored)
}

func TestPersist_BackupRestore(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	dump := filepath.Join(t.TempDir(), "kv.bak")

	var saved saveResult
	runJSON(t, &saved, "persist", "save", "--dir", src, "--entries", "50")

	_, _, err := runApp(t, "persist", "backup", "--dir", src, dump)
	require.NoError(t, err)
	_, _, err = runApp(t, "persist", "restore", "--dir", dst, dump)
	require.NoError(t, err)

	var loaded restoreResult
	runJSON(t, &loaded, "persist", "load", "--dir", dst, "--verify")
	assert.Equal(t, 50, loaded.Restored)
	assert.Zero(t, loaded.Mismatches)
}

func TestPersist_StatsGC(t *testing.T) {
	dir := t.TempDir()

	var stats storage.KVStats
	runJSON(t, &stats, "persist", "stats", "--dir", dir)
	assert.Zero(t, stats.GCRuns)

	var gc map[string]uint64
	runJSON(t, &gc, "persist", "gc", "--dir", dir)
	assert.Contains(t, gc, "files_rewritten")
}

func TestPersist_MissingArgs(t *testing.T) {
	_, _, err := runApp(t, "persist", "backup", "--dir", t.TempDir())
	assert.Error(t, err)
	_, _, err = runApp(t, "persist", "save", "--dir", t.TempDir(), "--name", "")
	assert.ErrorIs(t, err, storage.ErrInvalidName)
}

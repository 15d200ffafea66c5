package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestEngine(t *testing.T, dir string) *BadgerEngine {
	t.Helper()

	cfg := DefaultKVConfig(dir)
	if dir == "" {
		cfg.InMemory = true
	}
	cfg.Badger.GCInterval = "1h" // Disable auto GC for tests

	engine, err := NewBadgerEngine(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func TestBadgerEngine_BasicOperations(t *testing.T) {
	engine := newTestEngine(t, t.TempDir())
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		key := []byte("test-key")
		value := []byte("test-value")

		if err := engine.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}

		got, err := engine.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}

		if string(got) != string(value) {
			t.Errorf("expected %s, got %s", value, got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := engine.Get(ctx, []byte("non-existent"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := []byte("delete-key")

		if err := engine.Set(ctx, key, []byte("delete-value")); err != nil {
			t.Fatal(err)
		}
		if err := engine.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}

		_, err := engine.Get(ctx, key)
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})
}

func TestBadgerEngine_MissingDir(t *testing.T) {
	if _, err := NewBadgerEngine(KVConfig{}, nil); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestBadgerEngine_Scan(t *testing.T) {
	engine := newTestEngine(t, "")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := engine.Set(ctx, []byte(fmt.Sprintf("a/%d", i)), []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := engine.Set(ctx, []byte("b/0"), []byte{9}); err != nil {
		t.Fatal(err)
	}

	var keys []string
	err := engine.Scan(ctx, []byte("a/"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 5 {
		t.Errorf("Scan(a/) returned %d keys, want 5: %v", len(keys), keys)
	}
	if keys[0] != "a/0" || keys[4] != "a/4" {
		t.Errorf("Scan(a/) order = %v, want sorted", keys)
	}

	count := 0
	_ = engine.Scan(ctx, []byte("a/"), func(_, _ []byte) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Scan stopped after %d keys, want 2", count)
	}
}

func TestBadgerEngine_WriteBatchAndDropPrefix(t *testing.T) {
	engine := newTestEngine(t, "")
	ctx := context.Background()

	var pairs []KV
	for i := 0; i < 10000; i++ {
		pairs = append(pairs, KV{Key: []byte(fmt.Sprintf("x/%05d", i)), Value: []byte("v")})
	}
	pairs = append(pairs, KV{Key: []byte("y/keep"), Value: []byte("v")})

	if err := engine.WriteBatch(ctx, pairs); err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Get(ctx, []byte("x/09999")); err != nil {
		t.Fatalf("Get(x/09999) error = %v", err)
	}

	if err := engine.DropPrefix(ctx, []byte("x/")); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Get(ctx, []byte("x/00000")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(x/00000) after DropPrefix error = %v, want ErrKeyNotFound", err)
	}
	if _, err := engine.Get(ctx, []byte("y/keep")); err != nil {
		t.Errorf("Get(y/keep) after DropPrefix error = %v", err)
	}
}

func TestBadgerEngine_BackupRestore(t *testing.T) {
	src := newTestEngine(t, t.TempDir())
	ctx := context.Background()

	testData := map[string]string{
		"key1": "value1",
		"key2": "value2",
		"key3": "value3",
	}
	for k, v := range testData {
		if err := src.Set(ctx, []byte(k), []byte(v)); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := src.Backup(ctx, &buf); err != nil {
		t.Fatal(err)
	}

	dst := newTestEngine(t, t.TempDir())
	if err := dst.Restore(ctx, &buf); err != nil {
		t.Fatal(err)
	}

	for k, v := range testData {
		got, err := dst.Get(ctx, []byte(k))
		if err != nil {
			t.Fatalf("Get(%s) after restore error = %v", k, err)
		}
		if string(got) != v {
			t.Errorf("Get(%s) = %s, want %s", k, got, v)
		}
	}
}

func TestBadgerEngine_GC(t *testing.T) {
	engine := newTestEngine(t, t.TempDir())
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := engine.Set(ctx, []byte{byte(i)}, make([]byte, 1000)); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 50; i++ {
		if err := engine.Delete(ctx, []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := engine.GC(ctx)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.LastGCTime == 0 {
		t.Error("LastGCTime not recorded")
	}
	if stats.GCRuns != runs {
		t.Errorf("GCRuns = %d, want %d", stats.GCRuns, runs)
	}
}

func TestBadgerEngine_Close(t *testing.T) {
	cfg := DefaultKVConfig("")
	cfg.InMemory = true
	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if _, err := engine.Get(context.Background(), []byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after Close error = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine_RegisterMetrics(t *testing.T) {
	engine := newTestEngine(t, "")
	reg := prometheus.NewRegistry()
	engine.RegisterMetrics(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"fastutil_badger_lsm_size_bytes",
		"fastutil_badger_value_log_size_bytes",
		"fastutil_badger_gc_rewrites_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestBadgerEngine_CloseStopsMetricsLoop(t *testing.T) {
	cfg := DefaultKVConfig("")
	cfg.InMemory = true
	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	engine.RegisterMetrics(prometheus.NewRegistry())

	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		engine.loops.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background loops still running after Close")
	}

	// Registering after Close must not start a new loop.
	engine.RegisterMetrics(prometheus.NewRegistry())
	engine.loops.Wait()
}

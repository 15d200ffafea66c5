package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testStorage struct {
	Dir      string `koanf:"dir"`
	InMemory bool   `koanf:"in_memory"`
}

type testWorkload struct {
	Keys      int     `koanf:"keys"`
	ReadRatio float64 `koanf:"read_ratio"`
}

type testConfig struct {
	LogLevel string       `koanf:"log_level"`
	Storage  testStorage  `koanf:"storage"`
	Workload testWorkload `koanf:"workload"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
	if l.IsLoaded() {
		t.Error("IsLoaded() = true before Load")
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(WithEnvPrefix("BENCH_"), WithConfigFile("/etc/bench.yaml"))
	if l.envPrefix != "BENCH_" {
		t.Errorf("envPrefix = %q, want BENCH_", l.envPrefix)
	}
	if l.FilePath() != "/etc/bench.yaml" {
		t.Errorf("FilePath() = %q", l.FilePath())
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
log_level: debug
storage:
  dir: /var/lib/fastutil
workload:
  keys: 5000
  read_ratio: 0.8
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := l.GetString("storage.dir"); got != "/var/lib/fastutil" {
		t.Errorf("storage.dir = %q", got)
	}
	if got := l.GetInt("workload.keys"); got != 5000 {
		t.Errorf("workload.keys = %d, want 5000", got)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() error = nil for missing file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("FASTUTIL_STORAGE__IN_MEMORY", "true")
	t.Setenv("FASTUTIL_WORKLOAD__READ_RATIO", "0.95")
	t.Setenv("FASTUTIL_LOG_LEVEL", "warn")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"storage.in_memory", "true"},
		{"workload.read_ratio", "0.95"},
		{"log_level", "warn"},
	}
	for _, tt := range tests {
		if got := l.GetString(tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("BENCH_WORKLOAD__KEYS", "42")
	t.Setenv("FASTUTIL_WORKLOAD__KEYS", "7")

	l := NewLoader(WithEnvPrefix("BENCH_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetInt("workload.keys"); got != 42 {
		t.Errorf("workload.keys = %d, want 42", got)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	err := l.LoadMap(map[string]any{
		"log_level":     "error",
		"workload.keys": 10,
	})
	if err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := l.GetString("log_level"); got != "error" {
		t.Errorf("log_level = %q", got)
	}
	if got := l.GetInt("workload.keys"); got != 10 {
		t.Errorf("workload.keys = %d, want 10", got)
	}
	if !l.Exists("workload") {
		t.Error("Exists(workload) = false")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeFile(t, "config.yaml", `
log_level: debug
workload:
  keys: 100
  read_ratio: 0.5
`)
	t.Setenv("FASTUTIL_WORKLOAD__KEYS", "200")

	cfg := testConfig{
		LogLevel: "info",
		Storage:  testStorage{Dir: "data"},
		Workload: testWorkload{Keys: 1, ReadRatio: 0.9},
	}

	l := NewLoader(WithConfigFile(path))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want file value debug", cfg.LogLevel)
	}
	if cfg.Workload.Keys != 200 {
		t.Errorf("Workload.Keys = %d, want env value 200", cfg.Workload.Keys)
	}
	if cfg.Workload.ReadRatio != 0.5 {
		t.Errorf("Workload.ReadRatio = %v, want 0.5", cfg.Workload.ReadRatio)
	}
	if cfg.Storage.Dir != "data" {
		t.Errorf("Storage.Dir = %q, want default data", cfg.Storage.Dir)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load")
	}
}

func TestLoader_Reload(t *testing.T) {
	path := writeFile(t, "config.yaml", "log_level: debug\n")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("log_level: error\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := l.Reload(&cfg); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q after reload, want error", cfg.LogLevel)
	}
}

func TestLoader_Load_BadFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "workload: [unterminated\n")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err == nil {
		t.Error("Load() error = nil for malformed YAML")
	}
}

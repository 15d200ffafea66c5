package config

import (
	"fmt"

	"github.com/twelveoclock/fastutil-concurrent/internal/infra/confloader"
)

// Load builds the configuration from defaults, the YAML file at path (if
// not empty), the environment and overrides, then verifies it. overrides
// uses dotted keys such as "workload.workers" and wins over every other
// source. The returned loader can reload the same sources later.
func Load(path string, overrides map[string]any) (*Config, *confloader.Loader, error) {
	cfg := Default()

	l := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := l.Load(cfg); err != nil {
		return nil, nil, err
	}

	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, nil, err
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, nil, fmt.Errorf("unmarshal overrides: %w", err)
		}
	}

	if err := Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, l, nil
}

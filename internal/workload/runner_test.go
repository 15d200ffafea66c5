package workload

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/logger"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/metric"
)

func opsConfig(collection string, ops int64) Config {
	cfg := DefaultConfig()
	cfg.Collection = collection
	cfg.Workers = 4
	cfg.Stripes = 3
	cfg.Keys = 1000
	cfg.Ops = ops
	cfg.Duration = 0
	cfg.Seed = 42
	return cfg
}

func TestRunner_EveryCollection(t *testing.T) {
	for _, collection := range Collections {
		t.Run(collection, func(t *testing.T) {
			r, err := New(opsConfig(collection, 5000), WithLogger(logger.Discard()))
			require.NoError(t, err)

			rep, err := r.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, int64(5000), rep.Ops)
			assert.Equal(t, rep.Ops, rep.Gets+rep.Puts+rep.Removes)
			assert.Equal(t, 500, rep.Prefilled)
			assert.Equal(t, r.Target().Len(), rep.FinalSize)
			assert.LessOrEqual(t, rep.FinalSize, 1000)
			assert.NotEmpty(t, rep.RunID)
			assert.Greater(t, rep.Gets, rep.Puts)
			if _, ok := r.Target().(striped); ok {
				assert.Equal(t, 3, rep.Stripes)
			}
		})
	}
}

func TestRunner_ReadOnlyKeepsSize(t *testing.T) {
	cfg := opsConfig(Long2Long, 2000)
	cfg.ReadRatio = 1
	cfg.RemoveRatio = 0
	cfg.Prefill = 1

	r, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)
	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2000), rep.Gets)
	assert.Equal(t, int64(2000), rep.Hits)
	assert.Equal(t, 1.0, rep.HitRatio())
	assert.Equal(t, 1000, rep.FinalSize)
}

func TestRunner_RemoveOnlyEmpties(t *testing.T) {
	cfg := opsConfig(LongSet, 50_000)
	cfg.ReadRatio = 0
	cfg.RemoveRatio = 1
	cfg.Keys = 10

	r, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)
	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(50_000), rep.Removes)
	assert.Equal(t, 0, rep.FinalSize)
}

func TestRunner_Duration(t *testing.T) {
	cfg := opsConfig(Int2Int, 0)
	cfg.Duration = 50 * time.Millisecond

	r, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)

	start := time.Now()
	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Positive(t, rep.Ops)
	assert.Positive(t, rep.OpsPerSec)
}

func TestRunner_ContextCancel(t *testing.T) {
	cfg := opsConfig(ObjectSet, 0)
	cfg.Duration = time.Hour

	r, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	rep, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Positive(t, rep.Ops)
}

func TestRunner_Rate(t *testing.T) {
	cfg := opsConfig(Long2Obj, 0)
	cfg.Duration = 200 * time.Millisecond
	cfg.Rate = 500

	r, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)
	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	// 500/s for 0.2s plus the initial burst.
	assert.LessOrEqual(t, rep.Ops, int64(150))
}

func TestRunner_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	wm := metric.NewWorkloadMetrics(reg)
	col := metric.NewCollector()
	reg.MustRegister(col)

	r, err := New(opsConfig(Int2Int, 1000),
		WithLogger(logger.Discard()),
		WithMetrics(wm),
		WithCollector(col),
	)
	require.NoError(t, err)
	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1000), rep.Ops)
	// The collector stops tracking when the run ends.
	assert.Equal(t, 0, testutil.CollectAndCount(col))
	assert.Positive(t, testutil.CollectAndCount(reg, "fastutil_workload_operations_total"))
}

func TestRunner_WithTarget(t *testing.T) {
	target := &mutexMap{m: make(map[int64]int64)}
	r, err := New(opsConfig(MutexMap, 100), WithTarget(target), WithLogger(logger.Discard()))
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, target, r.Target())
	assert.Positive(t, target.Len())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := opsConfig(Int2Int, 0)
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrNoStopCondition)
}

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/twelveoclock/fastutil-concurrent/internal/cli/output"
	"github.com/twelveoclock/fastutil-concurrent/internal/config"
	"github.com/twelveoclock/fastutil-concurrent/internal/infra/confloader"
	"github.com/twelveoclock/fastutil-concurrent/internal/infra/shutdown"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/logger"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/metric"
	"github.com/twelveoclock/fastutil-concurrent/internal/workload"
)

var runKeys = flagKeys{
	"collection":   "workload.collection",
	"stripes":      "workload.stripes",
	"expected":     "workload.expected",
	"load-factor":  "workload.load_factor",
	"workers":      "workload.workers",
	"ops":          "workload.ops",
	"duration":     "workload.duration",
	"rate":         "workload.rate",
	"keys":         "workload.keys",
	"prefill":      "workload.prefill",
	"read-ratio":   "workload.read_ratio",
	"remove-ratio": "workload.remove_ratio",
	"seed":         "workload.seed",
	"metrics-addr": "metrics.addr",
}

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a concurrent workload and report throughput",
		Description: "Collections: " + strings.Join(workload.Collections, ", ") + ".\n" +
			"With --config, changes to log.level in the file apply while the run is in progress.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "collection", Usage: "Collection under test"},
			&cli.IntFlag{Name: "stripes", Usage: "Stripe count (0 = GOMAXPROCS-1)"},
			&cli.IntFlag{Name: "expected", Usage: "Expected size (0 = --keys)"},
			&cli.Float64Flag{Name: "load-factor", Usage: "Per-stripe load factor in (0, 1)"},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent workers"},
			&cli.Int64Flag{Name: "ops", Usage: "Stop after this many operations"},
			&cli.DurationFlag{Name: "duration", Usage: "Stop after this long"},
			&cli.Float64Flag{Name: "rate", Usage: "Operations per second across workers (0 = unlimited)"},
			&cli.IntFlag{Name: "keys", Usage: "Key space size"},
			&cli.Float64Flag{Name: "prefill", Usage: "Share of the key space inserted up front"},
			&cli.Float64Flag{Name: "read-ratio", Usage: "Share of gets"},
			&cli.Float64Flag{Name: "remove-ratio", Usage: "Share of removes"},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed (0 = random)"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus metrics on this address"},
			&cli.BoolFlag{Name: "latency", Usage: "Record per-operation latency (needs --metrics-addr)"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Do not show a spinner"},
		},
		Action: runWorkload,
	}
}

func runWorkload(c *cli.Context) error {
	e, err := setup(c, runKeys)
	if err != nil {
		return err
	}

	h := shutdown.NewHandler(10 * time.Second)
	ctx, stop := h.Context(c.Context)
	defer stop()
	ctx = logger.WithLogger(ctx, e.log)

	opts := []workload.Option{workload.WithLogger(e.log)}
	if addr := e.cfg.Metrics.Addr; addr != "" {
		reg := metric.NewRegistry()
		col := metric.NewCollector()
		reg.MustRegister(col)
		opts = append(opts, workload.WithCollector(col))
		if c.Bool("latency") {
			opts = append(opts, workload.WithMetrics(metric.NewWorkloadMetrics(reg)))
		}

		mctx, cancel := context.WithCancel(ctx)
		served := make(chan error, 1)
		go func() { served <- metric.Serve(mctx, addr, reg, e.log) }()
		h.OnShutdown(func(context.Context) error {
			cancel()
			return <-served
		})
	}

	if path := e.loader.FilePath(); path != "" && !c.IsSet("log-level") {
		w, err := watchLogLevel(e, path)
		if err != nil {
			e.log.Warn("config watcher disabled", "error", err)
		} else {
			h.OnShutdown(func(context.Context) error { return w.Stop() })
		}
	}

	r, err := workload.New(e.cfg.Workload, opts...)
	if err != nil {
		return err
	}

	var sp *output.Spinner
	if !c.Bool("quiet") && e.format == output.FormatTable {
		sp = output.NewSpinner(c.App.ErrWriter, fmt.Sprintf("running %s workload", e.cfg.Workload.Collection))
		sp.Start()
	}
	rep, runErr := r.Run(ctx)
	if sp != nil {
		sp.Stop("")
	}

	if err := h.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		e.log.Warn("workload interrupted", "ops", rep.Ops)
	}
	return e.print(rep)
}

// watchLogLevel re-reads the configuration file on change and applies a
// new log.level. Other settings only take effect on the next run.
func watchLogLevel(e *env, path string) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(e.log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		fresh := config.Default()
		if err := e.loader.Reload(fresh); err != nil {
			e.log.Warn("config reload failed", "error", err)
			return
		}
		if fresh.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(fresh.Log.Level); err != nil {
			e.log.Warn("invalid log level in reloaded config", "level", fresh.Log.Level, "error", err)
			return
		}
		e.log.Info("log level changed", "level", fresh.Log.Level)
	})
	w.StartAsync()
	return w, nil
}

package workload

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/logger"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/metric"
)

// Operation names used in metrics and reports.
const (
	OpGet    = "get"
	OpPut    = "put"
	OpRemove = "remove"
)

// Report summarizes a finished run.
type Report struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Collection string        `json:"collection" yaml:"collection"`
	Stripes    int           `json:"stripes,omitempty" yaml:"stripes,omitempty"`
	Workers    int           `json:"workers" yaml:"workers"`
	Ops        int64         `json:"ops" yaml:"ops"`
	Gets       int64         `json:"gets" yaml:"gets"`
	Hits       int64         `json:"hits" yaml:"hits"`
	Puts       int64         `json:"puts" yaml:"puts"`
	Removes    int64         `json:"removes" yaml:"removes"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
	OpsPerSec  float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
	Prefilled  int           `json:"prefilled" yaml:"prefilled"`
	FinalSize  int           `json:"final_size" yaml:"final_size"`
}

// HitRatio returns the share of gets that found their key.
func (r *Report) HitRatio() float64 {
	if r.Gets == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Gets)
}

// Runner executes one workload.
type Runner struct {
	cfg       Config
	target    Target
	logger    *slog.Logger
	metrics   *metric.WorkloadMetrics
	collector *metric.Collector
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithMetrics records per-operation latency. Timing every operation
// lowers throughput noticeably for the fastest collections.
func WithMetrics(m *metric.WorkloadMetrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithCollector reports the stripe occupancy of the collection while it runs.
func WithCollector(c *metric.Collector) Option {
	return func(r *Runner) {
		r.collector = c
	}
}

// WithTarget drives t instead of a collection built from the config.
func WithTarget(t Target) Option {
	return func(r *Runner) {
		r.target = t
	}
}

// New validates cfg and builds the collection under test.
func New(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	r := &Runner{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.target == nil {
		r.target = newTarget(cfg)
	}
	return r, nil
}

// Target returns the collection under test.
func (r *Runner) Target() Target {
	return r.target
}

type counters struct {
	issued  atomic.Int64
	gets    atomic.Int64
	hits    atomic.Int64
	puts    atomic.Int64
	removes atomic.Int64
}

// Run prefills the collection and runs the workers until a stop condition
// is met. Cancellation of ctx ends the run early without an error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := ulid.Make().String()
	ctx = logger.WithRunID(logger.WithLogger(ctx, r.logger), runID)
	log := logger.L(ctx)

	if s, ok := r.target.(striped); ok && r.collector != nil {
		r.collector.Track(r.cfg.Collection, s)
		defer r.collector.Untrack(r.cfg.Collection)
	}

	prefilled := r.prefill()
	log.Info("workload started",
		"collection", r.cfg.Collection,
		"workers", r.cfg.Workers,
		"keys", r.cfg.Keys,
		"prefilled", prefilled,
	)

	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	var limiter *rate.Limiter
	if r.cfg.Rate > 0 {
		burst := max(int(r.cfg.Rate/100), 1)
		limiter = rate.NewLimiter(rate.Limit(r.cfg.Rate), burst)
	}

	var c counters
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < r.cfg.Workers; w++ {
		rng := rand.New(rand.NewPCG(r.cfg.Seed, uint64(w)))
		g.Go(func() error {
			return r.work(gctx, rng, limiter, &c)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	rep := &Report{
		RunID:      runID,
		Collection: r.cfg.Collection,
		Workers:    r.cfg.Workers,
		Gets:       c.gets.Load(),
		Hits:       c.hits.Load(),
		Puts:       c.puts.Load(),
		Removes:    c.removes.Load(),
		Elapsed:    elapsed,
		Prefilled:  prefilled,
		FinalSize:  r.target.Len(),
	}
	rep.Ops = rep.Gets + rep.Puts + rep.Removes
	if elapsed > 0 {
		rep.OpsPerSec = float64(rep.Ops) / elapsed.Seconds()
	}
	if s, ok := r.target.(striped); ok {
		rep.Stripes = s.Stripes()
	}

	log.Info("workload finished",
		"ops", rep.Ops,
		"elapsed", elapsed,
		"ops_per_sec", int64(rep.OpsPerSec),
		"final_size", rep.FinalSize,
	)
	return rep, nil
}

// prefill inserts the first Prefill share of the key space.
func (r *Runner) prefill() int {
	n := int(float64(r.cfg.Keys) * r.cfg.Prefill)
	for k := 0; k < n; k++ {
		r.target.Put(int64(k))
	}
	return n
}

func (r *Runner) work(ctx context.Context, rng *rand.Rand, limiter *rate.Limiter, c *counters) error {
	var gets, hits, puts, removes int64
	defer func() {
		c.gets.Add(gets)
		c.hits.Add(hits)
		c.puts.Add(puts)
		c.removes.Add(removes)
	}()

	keys := int64(r.cfg.Keys)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if r.cfg.Ops > 0 && c.issued.Add(1) > r.cfg.Ops {
			return nil
		}
		if limiter != nil {
			// Wait fails only once ctx is done or its deadline is too
			// close for another token.
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		k := rng.Int64N(keys)
		p := rng.Float64()

		var op string
		var start time.Time
		if r.metrics != nil {
			start = time.Now()
		}
		switch {
		case p < r.cfg.ReadRatio:
			op = OpGet
			if r.target.Get(k) {
				hits++
			}
			gets++
		case p < r.cfg.ReadRatio+r.cfg.RemoveRatio:
			op = OpRemove
			r.target.Remove(k)
			removes++
		default:
			op = OpPut
			r.target.Put(k)
			puts++
		}
		if r.metrics != nil {
			r.metrics.Observe(r.cfg.Collection, op, time.Since(start))
		}
	}
}

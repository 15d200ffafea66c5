package workload

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/twelveoclock/fastutil-concurrent/internal/stripe"
)

// Collection kinds.
const (
	Int2Int    = "int2int"
	Long2Long  = "long2long"
	Long2Obj   = "long2object"
	LongSet    = "long-set"
	ObjectSet  = "object-set"
	MutexMap   = "mutex-map"
	SyncMapRef = "sync-map"
)

// Collections lists the accepted values of Config.Collection.
var Collections = []string{Int2Int, Long2Long, Long2Obj, LongSet, ObjectSet, MutexMap, SyncMapRef}

// Errors returned by Config.Validate.
var (
	ErrUnknownCollection = errors.New("workload: unknown collection")
	ErrNoStopCondition   = errors.New("workload: ops or duration must be set")
	ErrRatio             = errors.New("workload: read_ratio + remove_ratio must be within [0, 1]")
)

// Config describes one workload run.
type Config struct {
	// Collection is the collection under test, one of Collections.
	Collection string `koanf:"collection" json:"collection" yaml:"collection"`

	// Stripes is the stripe count. Zero uses the default for GOMAXPROCS.
	Stripes int `koanf:"stripes" json:"stripes" yaml:"stripes"`

	// Expected sizes the collection up front. Zero uses Keys.
	Expected int `koanf:"expected" json:"expected" yaml:"expected"`

	// LoadFactor of every stripe. Zero uses the table default.
	LoadFactor float32 `koanf:"load_factor" json:"load_factor" yaml:"load_factor"`

	// Workers is the number of concurrent goroutines issuing operations.
	Workers int `koanf:"workers" json:"workers" yaml:"workers"`

	// Ops stops the run after this many operations. Zero means no limit.
	Ops int64 `koanf:"ops" json:"ops" yaml:"ops"`

	// Duration stops the run after this long. Zero means no limit.
	Duration time.Duration `koanf:"duration" json:"duration" yaml:"duration"`

	// Rate caps operations per second across all workers. Zero means no cap.
	Rate float64 `koanf:"rate" json:"rate" yaml:"rate"`

	// Keys is the size of the key space.
	Keys int `koanf:"keys" json:"keys" yaml:"keys"`

	// Prefill is the fraction of the key space inserted before the run.
	Prefill float64 `koanf:"prefill" json:"prefill" yaml:"prefill"`

	// ReadRatio and RemoveRatio split operations; the remainder are puts.
	ReadRatio   float64 `koanf:"read_ratio" json:"read_ratio" yaml:"read_ratio"`
	RemoveRatio float64 `koanf:"remove_ratio" json:"remove_ratio" yaml:"remove_ratio"`

	// Seed makes key sequences reproducible. Zero picks a random seed.
	Seed uint64 `koanf:"seed" json:"seed" yaml:"seed"`
}

// DefaultConfig returns a read-heavy int2int workload.
func DefaultConfig() Config {
	return Config{
		Collection:  Int2Int,
		Workers:     stripe.DefaultCount() + 1,
		Duration:    10 * time.Second,
		Keys:        100_000,
		Prefill:     0.5,
		ReadRatio:   0.8,
		RemoveRatio: 0.05,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !slices.Contains(Collections, c.Collection) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c.Collection)
	}
	if c.Stripes < 0 {
		return fmt.Errorf("workload: stripes must be non-negative, got %d", c.Stripes)
	}
	if c.Expected < 0 {
		return fmt.Errorf("workload: expected must be non-negative, got %d", c.Expected)
	}
	if c.LoadFactor != 0 && !(c.LoadFactor > 0 && c.LoadFactor < 1) {
		return fmt.Errorf("workload: load_factor must be in (0, 1), got %v", c.LoadFactor)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workload: workers must be at least 1, got %d", c.Workers)
	}
	if c.Ops < 0 || c.Duration < 0 || !(c.Rate >= 0) {
		return errors.New("workload: ops, duration and rate must be non-negative")
	}
	if c.Ops == 0 && c.Duration == 0 {
		return ErrNoStopCondition
	}
	if c.Keys < 1 {
		return fmt.Errorf("workload: keys must be at least 1, got %d", c.Keys)
	}
	if c.Collection == Int2Int && c.Keys > math.MaxInt32 {
		return fmt.Errorf("workload: %s keys must be at most %d, got %d", Int2Int, math.MaxInt32, c.Keys)
	}
	if !unit(c.Prefill) {
		return fmt.Errorf("workload: prefill must be within [0, 1], got %v", c.Prefill)
	}
	if !unit(c.ReadRatio) || !unit(c.RemoveRatio) || c.ReadRatio+c.RemoveRatio > 1 {
		return ErrRatio
	}
	return nil
}

// unit reports whether f lies in [0, 1]. NaN does not.
func unit(f float64) bool {
	return f >= 0 && f <= 1
}

func (c Config) expected() int {
	if c.Expected > 0 {
		return c.Expected
	}
	return c.Keys
}

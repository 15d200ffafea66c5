package cmap

import (
	"github.com/twelveoclock/fastutil-concurrent/internal/stripe"
	"github.com/twelveoclock/fastutil-concurrent/pkg/openhash"
)

type config struct {
	stripes    int
	expected   int
	loadFactor float32
}

// Option configures a Map.
type Option func(*config)

// WithStripes sets the number of stripes. Values below 1 select the default.
func WithStripes(n int) Option {
	return func(c *config) {
		c.stripes = n
	}
}

// WithExpected sets the total number of entries the map should hold before
// any stripe grows. The capacity is split evenly over the stripes.
func WithExpected(n int) Option {
	return func(c *config) {
		c.expected = n
	}
}

// WithLoadFactor sets the fill ratio of every stripe table, in (0, 1).
func WithLoadFactor(f float32) Option {
	return func(c *config) {
		c.loadFactor = f
	}
}

func newConfig(opts []Option) config {
	c := config{
		expected:   openhash.DefaultInitialSize,
		loadFactor: openhash.DefaultLoadFactor,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.stripes < 1 {
		c.stripes = stripe.DefaultCount()
	}
	return c
}

func (c config) tableOptions() openhash.Options {
	return openhash.Options{
		Expected:   stripe.SplitCapacity(c.expected, c.stripes),
		LoadFactor: c.loadFactor,
	}
}

package openhash

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// DefaultInitialSize is the expected number of elements used when none is given.
	DefaultInitialSize = 16

	// DefaultLoadFactor is the default fill ratio before the table grows.
	DefaultLoadFactor float32 = 0.75

	// maxArraySize bounds the slot count of a single table.
	maxArraySize = 1 << 30

	// phi is 2^64 divided by the golden ratio, for Fibonacci hashing.
	phi = 0x9e3779b97f4a7c15
)

// Options configures a table.
type Options struct {
	// Expected is the number of elements the table should hold without
	// growing. Zero means DefaultInitialSize.
	Expected int

	// LoadFactor is the fill ratio in (0, 1). Zero means DefaultLoadFactor.
	LoadFactor float32
}

func (o Options) normalize() Options {
	if o.Expected < 0 {
		panic(fmt.Sprintf("openhash: expected number of elements must be non-negative, got %d", o.Expected))
	}
	if o.Expected == 0 {
		o.Expected = DefaultInitialSize
	}
	if o.LoadFactor == 0 {
		o.LoadFactor = DefaultLoadFactor
	}
	if !(o.LoadFactor > 0 && o.LoadFactor < 1) {
		panic(fmt.Sprintf("openhash: load factor must be in (0, 1), got %v", o.LoadFactor))
	}
	return o
}

// arraySize returns the smallest power of two able to hold expected
// elements at load factor f, and at least 2.
func arraySize(expected int, f float32) int {
	s := int64(math.Ceil(float64(expected) / float64(f)))
	if s < 2 {
		s = 2
	}
	if s > maxArraySize {
		panic(fmt.Sprintf("openhash: too large (%d expected elements with load factor %v)", expected, f))
	}
	return 1 << bits.Len64(uint64(s-1))
}

// maxFill returns the number of occupied slots that triggers growth.
// It is always at most n-1, so a probe sequence always ends at an empty slot.
func maxFill(n int, f float32) int {
	return min(int(math.Ceil(float64(n)*float64(f))), n-1)
}

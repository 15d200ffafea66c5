// Package stripe holds the lock array shared by the striped collections.
//
// A striped collection splits its entries over N independent tables, each
// guarded by its own sync.RWMutex. A key always maps to the same stripe, so
// single-key operations take exactly one lock and operations on keys of
// different stripes never contend.
package stripe

import (
	"math/bits"
	"runtime"
	"sync"
)

// Locks is a fixed array of reader/writer locks.
type Locks struct {
	mu []sync.RWMutex
}

// New creates n locks. n below 1 is raised to 1.
func New(n int) *Locks {
	if n < 1 {
		n = 1
	}
	return &Locks{mu: make([]sync.RWMutex, n)}
}

// Len returns the number of stripes.
func (l *Locks) Len() int {
	return len(l.mu)
}

// Index maps a key hash to a stripe.
//
// It takes the high bits of hash*n, so any stripe count works and the
// choice does not correlate with the slot a table derives from the same hash.
func (l *Locks) Index(hash uint64) int {
	hi, _ := bits.Mul64(hash, uint64(len(l.mu)))
	return int(hi)
}

// At returns the lock of stripe i.
func (l *Locks) At(i int) *sync.RWMutex {
	return &l.mu[i]
}

// DefaultCount returns the stripe count used when none is configured:
// one less than GOMAXPROCS, and at least 1.
func DefaultCount() int {
	return max(runtime.GOMAXPROCS(0)-1, 1)
}

// SplitCapacity divides a total expected size evenly over stripes, rounding up.
func SplitCapacity(total, stripes int) int {
	if stripes < 1 {
		stripes = 1
	}
	if total <= 0 {
		return 0
	}
	return (total + stripes - 1) / stripes
}

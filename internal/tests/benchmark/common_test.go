package benchmark

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"testing"
)

// Sizes are the collection sizes benchmarked.
var Sizes = []int{1_000, 100_000, 1_000_000}

// SmallSizes for quick runs.
var SmallSizes = []int{1_000, 100_000}

// Stripes are the stripe counts compared by the concurrent benchmarks.
var Stripes = []int{1, 4, 16, 64}

// keys returns n distinct pseudo-random keys.
func keys(n int) []int64 {
	r := rand.New(rand.NewPCG(1, 2))
	seen := make(map[int64]struct{}, n)
	out := make([]int64, 0, n)
	for len(out) < n {
		k := r.Int64()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithSizes runs benchFn once per size.
func runWithSizes(b *testing.B, sizes []int, benchFn func(b *testing.B, n int)) {
	for _, n := range sizes {
		b.Run(fmt.Sprintf("size_%d", n), func(b *testing.B) {
			benchFn(b, n)
		})
	}
}

// lockedMap is the baseline: a built-in map behind one RWMutex.
type lockedMap struct {
	mu sync.RWMutex
	m  map[int64]int64
}

func newLockedMap(n int) *lockedMap {
	return &lockedMap{m: make(map[int64]int64, n)}
}

func (l *lockedMap) Get(k int64) (int64, bool) {
	l.mu.RLock()
	v, ok := l.m[k]
	l.mu.RUnlock()
	return v, ok
}

func (l *lockedMap) Put(k, v int64) {
	l.mu.Lock()
	l.m[k] = v
	l.mu.Unlock()
}

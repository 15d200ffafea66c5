package cmap

import (
	"github.com/twelveoclock/fastutil-concurrent/internal/stripe"
	"github.com/twelveoclock/fastutil-concurrent/pkg/hashing"
	"github.com/twelveoclock/fastutil-concurrent/pkg/openhash"
)

// Map is a concurrent map split over lock-guarded open-addressing stripes.
type Map[K, V any] struct {
	strategy   hashing.Strategy[K]
	loadFactor float32
	locks      *stripe.Locks
	tables     []*openhash.Map[K, V]
}

// New creates a map whose keys are hashed with hashing.Comparable.
func New[K comparable, V any](opts ...Option) *Map[K, V] {
	return NewWithStrategy[K, V](hashing.Comparable[K](), opts...)
}

// NewWithStrategy creates a map that hashes and compares keys with strategy.
//
// It panics if strategy is nil or an option is out of range.
func NewWithStrategy[K, V any](strategy hashing.Strategy[K], opts ...Option) *Map[K, V] {
	cfg := newConfig(opts)
	tableOpts := cfg.tableOptions()

	m := &Map[K, V]{
		strategy:   strategy,
		loadFactor: cfg.loadFactor,
		locks:      stripe.New(cfg.stripes),
		tables:     make([]*openhash.Map[K, V], cfg.stripes),
	}
	for i := range m.tables {
		m.tables[i] = openhash.New[K, V](strategy, tableOpts)
	}
	return m
}

// stripeOf returns the stripe index owning key.
func (m *Map[K, V]) stripeOf(key K) int {
	return m.locks.Index(m.strategy.Hash(key))
}

// read runs fn on the stripe owning key under its read lock.
func (m *Map[K, V]) read(key K, fn func(t *openhash.Map[K, V])) {
	i := m.stripeOf(key)
	mu := m.locks.At(i)
	mu.RLock()
	defer mu.RUnlock()
	fn(m.tables[i])
}

// write runs fn on the stripe owning key under its write lock.
func (m *Map[K, V]) write(key K, fn func(t *openhash.Map[K, V])) {
	i := m.stripeOf(key)
	mu := m.locks.At(i)
	mu.Lock()
	defer mu.Unlock()
	fn(m.tables[i])
}

// Get returns the value for key, or the default return value if key is absent.
func (m *Map[K, V]) Get(key K) (v V) {
	m.read(key, func(t *openhash.Map[K, V]) {
		v = t.Get(key)
	})
	return v
}

// Lookup returns the value for key and whether it was present.
func (m *Map[K, V]) Lookup(key K) (v V, ok bool) {
	m.read(key, func(t *openhash.Map[K, V]) {
		v, ok = t.Lookup(key)
	})
	return v, ok
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Put stores value under key and returns the previous value, or the default
// return value if key was absent.
func (m *Map[K, V]) Put(key K, value V) (old V) {
	m.write(key, func(t *openhash.Map[K, V]) {
		old = t.Put(key, value)
	})
	return old
}

// Remove deletes key and returns its value, or the default return value if
// key was absent.
func (m *Map[K, V]) Remove(key K) (old V) {
	m.write(key, func(t *openhash.Map[K, V]) {
		old = t.Remove(key)
	})
	return old
}

// Delete deletes key and reports its value and whether it was present.
func (m *Map[K, V]) Delete(key K) (old V, ok bool) {
	m.write(key, func(t *openhash.Map[K, V]) {
		old, ok = t.Delete(key)
	})
	return old, ok
}

// Len returns the number of entries, summed stripe by stripe.
func (m *Map[K, V]) Len() int {
	n := 0
	for i, t := range m.tables {
		mu := m.locks.At(i)
		mu.RLock()
		n += t.Len()
		mu.RUnlock()
	}
	return n
}

// IsEmpty reports whether no stripe holds an entry.
func (m *Map[K, V]) IsEmpty() bool {
	for i, t := range m.tables {
		mu := m.locks.At(i)
		mu.RLock()
		empty := t.IsEmpty()
		mu.RUnlock()
		if !empty {
			return false
		}
	}
	return true
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	for i, t := range m.tables {
		mu := m.locks.At(i)
		mu.Lock()
		t.Clear()
		mu.Unlock()
	}
}

// Trim shrinks every stripe table to fit its entries.
func (m *Map[K, V]) Trim() {
	for i, t := range m.tables {
		mu := m.locks.At(i)
		mu.Lock()
		t.Trim()
		mu.Unlock()
	}
}

// DefaultReturnValue returns the value reported for absent keys.
func (m *Map[K, V]) DefaultReturnValue() V {
	mu := m.locks.At(0)
	mu.RLock()
	defer mu.RUnlock()
	return m.tables[0].DefaultReturnValue()
}

// SetDefaultReturnValue sets the value reported for absent keys on every
// stripe. Stripes switch one at a time.
func (m *Map[K, V]) SetDefaultReturnValue(v V) {
	for i, t := range m.tables {
		mu := m.locks.At(i)
		mu.Lock()
		t.SetDefaultReturnValue(v)
		mu.Unlock()
	}
}

// PutAllFrom copies every entry of src into m. src may be m itself.
func (m *Map[K, V]) PutAllFrom(src *Map[K, V]) {
	for _, e := range src.Entries() {
		m.Put(e.Key, e.Value)
	}
}

// PutAll copies every entry of src into m.
func PutAll[K comparable, V any](m *Map[K, V], src map[K]V) {
	for k, v := range src {
		m.Put(k, v)
	}
}

// Stripes returns the number of stripes.
func (m *Map[K, V]) Stripes() int {
	return len(m.tables)
}

// StripeStats describes the occupancy of one stripe.
type StripeStats struct {
	Index    int
	Count    int
	Capacity int
}

// Stats returns per-stripe occupancy.
func (m *Map[K, V]) Stats() []StripeStats {
	stats := make([]StripeStats, len(m.tables))
	for i, t := range m.tables {
		mu := m.locks.At(i)
		mu.RLock()
		stats[i] = StripeStats{
			Index:    i,
			Count:    t.Len(),
			Capacity: t.Cap(),
		}
		mu.RUnlock()
	}
	return stats
}

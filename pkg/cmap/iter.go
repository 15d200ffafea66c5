package cmap

import (
	"iter"

	"github.com/twelveoclock/fastutil-concurrent/pkg/openhash"
)

// Entry is a key-value pair copied out of a Map.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Range calls fn for every entry until fn returns false.
//
// Each stripe is visited under its read lock, so fn must not write to m.
// The view is consistent per stripe only.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for i := range m.tables {
		if !m.rangeStripe(i, fn) {
			return
		}
	}
}

// rangeStripe visits stripe i under its read lock. The lock is released
// even if fn panics.
func (m *Map[K, V]) rangeStripe(i int, fn func(key K, value V) bool) bool {
	mu := m.locks.At(i)
	mu.RLock()
	defer mu.RUnlock()
	return m.tables[i].Range(fn)
}

// RangeWithLimit calls fn for at most limit entries and returns how many
// entries fn accepted.
func (m *Map[K, V]) RangeWithLimit(limit int, fn func(key K, value V) bool) int {
	count := 0
	if limit <= 0 {
		return 0
	}
	m.Range(func(k K, v V) bool {
		if !fn(k, v) {
			return false
		}
		count++
		return count < limit
	})
	return count
}

// All returns an iterator over a per-stripe copy of the entries. No lock is
// held while the loop body runs, so the body may write to m.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		var buf []Entry[K, V]
		for i := range m.tables {
			buf = m.appendStripe(buf[:0], i)
			for _, e := range buf {
				if !yield(e.Key, e.Value) {
					return
				}
			}
		}
	}
}

func (m *Map[K, V]) appendStripe(dst []Entry[K, V], i int) []Entry[K, V] {
	mu := m.locks.At(i)
	mu.RLock()
	defer mu.RUnlock()
	m.tables[i].Range(func(k K, v V) bool {
		dst = append(dst, Entry[K, V]{Key: k, Value: v})
		return true
	})
	return dst
}

// Keys returns a copy of all keys.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Values returns a copy of all values.
func (m *Map[K, V]) Values() []V {
	values := make([]V, 0, m.Len())
	m.Range(func(_ K, value V) bool {
		values = append(values, value)
		return true
	})
	return values
}

// Entries returns a copy of all key-value pairs.
func (m *Map[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, m.Len())
	for i := range m.tables {
		entries = m.appendStripe(entries, i)
	}
	return entries
}

// Snapshot copies m into a single unsynchronized table that carries the
// same default return value.
func (m *Map[K, V]) Snapshot() *openhash.Map[K, V] {
	entries := m.Entries()
	out := openhash.New[K, V](m.strategy, openhash.Options{Expected: len(entries), LoadFactor: m.loadFactor})
	out.SetDefaultReturnValue(m.DefaultReturnValue())
	for _, e := range entries {
		out.Put(e.Key, e.Value)
	}
	return out
}

// ContainsValueFunc reports whether any value satisfies match.
func (m *Map[K, V]) ContainsValueFunc(match func(V) bool) bool {
	found := false
	m.Range(func(_ K, v V) bool {
		found = match(v)
		return !found
	})
	return found
}

// ContainsValue reports whether value is stored under any key. It scans
// every stripe.
func ContainsValue[K any, V comparable](m *Map[K, V], value V) bool {
	return m.ContainsValueFunc(func(v V) bool {
		return v == value
	})
}

// RetainFunc removes every entry for which keep returns false and reports
// whether m changed. keep runs under the stripe write lock.
func (m *Map[K, V]) RetainFunc(keep func(key K, value V) bool) bool {
	changed := false
	for i := range m.tables {
		if m.retainStripe(i, keep) {
			changed = true
		}
	}
	return changed
}

func (m *Map[K, V]) retainStripe(i int, keep func(key K, value V) bool) bool {
	mu := m.locks.At(i)
	mu.Lock()
	defer mu.Unlock()
	return m.tables[i].RetainFunc(keep)
}

package cmap

import (
	"github.com/twelveoclock/fastutil-concurrent/pkg/hashing"
	"github.com/twelveoclock/fastutil-concurrent/pkg/openhash"
)

// PutIfAbsent stores value under key unless key is present. It returns the
// value now associated with key and whether it was already there.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (actual V, loaded bool) {
	m.write(key, func(t *openhash.Map[K, V]) {
		actual, loaded = t.PutIfAbsent(key, value)
	})
	return actual, loaded
}

// GetOrSet is an alias of PutIfAbsent.
func (m *Map[K, V]) GetOrSet(key K, value V) (V, bool) {
	return m.PutIfAbsent(key, value)
}

// ComputeIfAbsent returns the value for key, storing fn() first if key is
// absent. fn runs under the stripe write lock at most once.
func (m *Map[K, V]) ComputeIfAbsent(key K, fn func() V) (actual V, loaded bool) {
	m.write(key, func(t *openhash.Map[K, V]) {
		if actual, loaded = t.Lookup(key); loaded {
			return
		}
		actual = fn()
		t.Put(key, actual)
	})
	return actual, loaded
}

// Compute replaces the value for key with the result of fn. fn receives the
// current value and whether key is present; returning keep=false removes the
// key. Compute reports the resulting value and whether key is now present.
func (m *Map[K, V]) Compute(key K, fn func(old V, ok bool) (V, bool)) (v V, present bool) {
	m.write(key, func(t *openhash.Map[K, V]) {
		v, present = t.Compute(key, fn)
	})
	return v, present
}

// Merge stores value under key if key is absent, or fn(old, value) otherwise.
// It returns the stored value.
func (m *Map[K, V]) Merge(key K, value V, fn func(old, value V) V) V {
	v, _ := m.Compute(key, func(old V, ok bool) (V, bool) {
		if !ok {
			return value, true
		}
		return fn(old, value), true
	})
	return v
}

// Replace stores value under key only if key is present. It returns the
// previous value and whether the replacement happened.
func (m *Map[K, V]) Replace(key K, value V) (old V, ok bool) {
	m.write(key, func(t *openhash.Map[K, V]) {
		if old, ok = t.Lookup(key); ok {
			t.Put(key, value)
		}
	})
	return old, ok
}

// Pop is an alias of Delete.
func (m *Map[K, V]) Pop(key K) (V, bool) {
	return m.Delete(key)
}

// CompareAndSwap stores next under key if the current value equals old.
func CompareAndSwap[K any, V comparable](m *Map[K, V], key K, old, next V) (swapped bool) {
	m.write(key, func(t *openhash.Map[K, V]) {
		cur, ok := t.Lookup(key)
		if ok && cur == old {
			t.Put(key, next)
			swapped = true
		}
	})
	return swapped
}

// CompareAndDelete deletes key if its current value equals old.
func CompareAndDelete[K any, V comparable](m *Map[K, V], key K, old V) (deleted bool) {
	m.write(key, func(t *openhash.Map[K, V]) {
		cur, ok := t.Lookup(key)
		if ok && cur == old {
			t.Delete(key)
			deleted = true
		}
	})
	return deleted
}

// AddTo adds incr to the value under key and returns the previous value.
// An absent key starts from the default return value.
func AddTo[K any, V hashing.Integer](m *Map[K, V], key K, incr V) (old V) {
	m.write(key, func(t *openhash.Map[K, V]) {
		cur, ok := t.Lookup(key)
		if !ok {
			cur = t.DefaultReturnValue()
		}
		t.Put(key, cur+incr)
		old = cur
	})
	return old
}

package cset

import (
	"iter"

	"github.com/twelveoclock/fastutil-concurrent/pkg/cmap"
	"github.com/twelveoclock/fastutil-concurrent/pkg/hashing"
)

// Option configures a Set.
type Option = cmap.Option

// Options shared with cmap.
var (
	WithStripes    = cmap.WithStripes
	WithExpected   = cmap.WithExpected
	WithLoadFactor = cmap.WithLoadFactor
)

// Container is anything that can answer membership queries.
type Container[K any] interface {
	Contains(key K) bool
}

// Set is a concurrent hash set.
type Set[K any] struct {
	m *cmap.Map[K, struct{}]
}

// New creates a set whose elements are hashed with hashing.Comparable.
func New[K comparable](opts ...Option) *Set[K] {
	return NewWithStrategy[K](hashing.Comparable[K](), opts...)
}

// NewWithStrategy creates a set that hashes and compares elements with strategy.
func NewWithStrategy[K any](strategy hashing.Strategy[K], opts ...Option) *Set[K] {
	return &Set[K]{m: cmap.NewWithStrategy[K, struct{}](strategy, opts...)}
}

// NewInt creates a set of int32.
func NewInt(opts ...Option) *Set[int32] {
	return NewWithStrategy[int32](hashing.Int32(), opts...)
}

// NewLong creates a set of int64.
func NewLong(opts ...Option) *Set[int64] {
	return NewWithStrategy[int64](hashing.Int64(), opts...)
}

// NewObject creates a set of arbitrary comparable elements.
func NewObject[K comparable](opts ...Option) *Set[K] {
	return New[K](opts...)
}

// NewString creates a set of strings hashed with murmur3.
func NewString(opts ...Option) *Set[string] {
	return NewWithStrategy[string](hashing.String(), opts...)
}

// Add inserts key and reports whether the set changed.
func (s *Set[K]) Add(key K) bool {
	_, loaded := s.m.PutIfAbsent(key, struct{}{})
	return !loaded
}

// AddAll inserts every key and reports whether the set changed.
func (s *Set[K]) AddAll(keys ...K) bool {
	changed := false
	for _, k := range keys {
		if s.Add(k) {
			changed = true
		}
	}
	return changed
}

// Contains reports whether key is in the set.
func (s *Set[K]) Contains(key K) bool {
	return s.m.ContainsKey(key)
}

// ContainsAll reports whether every key is in the set.
func (s *Set[K]) ContainsAll(keys ...K) bool {
	for _, k := range keys {
		if !s.Contains(k) {
			return false
		}
	}
	return true
}

// Remove deletes key and reports whether the set changed.
func (s *Set[K]) Remove(key K) bool {
	_, ok := s.m.Delete(key)
	return ok
}

// RemoveAll deletes every key and reports whether the set changed.
func (s *Set[K]) RemoveAll(keys ...K) bool {
	changed := false
	for _, k := range keys {
		if s.Remove(k) {
			changed = true
		}
	}
	return changed
}

// RetainFunc removes every element for which keep returns false and reports
// whether the set changed. keep runs under a stripe write lock and must not
// call into s.
func (s *Set[K]) RetainFunc(keep func(key K) bool) bool {
	return s.m.RetainFunc(func(k K, _ struct{}) bool {
		return keep(k)
	})
}

// RetainAll removes every element other does not contain and reports whether
// the set changed. other is queried without holding any lock of s, so it may
// be s itself or another striped set.
func (s *Set[K]) RetainAll(other Container[K]) bool {
	if o, ok := other.(*Set[K]); ok && o == s {
		return false
	}
	changed := false
	for k := range s.All() {
		if !other.Contains(k) && s.Remove(k) {
			changed = true
		}
	}
	return changed
}

// Len returns the number of elements.
func (s *Set[K]) Len() int {
	return s.m.Len()
}

// IsEmpty reports whether the set has no elements.
func (s *Set[K]) IsEmpty() bool {
	return s.m.IsEmpty()
}

// Clear removes every element.
func (s *Set[K]) Clear() {
	s.m.Clear()
}

// Trim shrinks every stripe table to fit its elements.
func (s *Set[K]) Trim() {
	s.m.Trim()
}

// ToSlice returns a copy of the elements.
func (s *Set[K]) ToSlice() []K {
	return s.m.Keys()
}

// AppendTo appends the elements to dst and returns the extended slice.
func (s *Set[K]) AppendTo(dst []K) []K {
	s.m.Range(func(k K, _ struct{}) bool {
		dst = append(dst, k)
		return true
	})
	return dst
}

// All returns an iterator over a per-stripe copy of the elements. The loop
// body may modify s.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range s.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Range calls fn for every element until fn returns false. fn runs under a
// stripe read lock and must not modify s.
func (s *Set[K]) Range(fn func(key K) bool) {
	s.m.Range(func(k K, _ struct{}) bool {
		return fn(k)
	})
}

// Stripes returns the number of stripes.
func (s *Set[K]) Stripes() int {
	return s.m.Stripes()
}

// Stats returns per-stripe occupancy.
func (s *Set[K]) Stats() []cmap.StripeStats {
	return s.m.Stats()
}

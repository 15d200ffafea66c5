package openhash

import "github.com/twelveoclock/fastutil-concurrent/pkg/hashing"

// Set is an open-addressing hash set of K.
//
// It shares the Map implementation; the value slice has a zero-size
// element type and occupies no memory.
type Set[K any] struct {
	m *Map[K, struct{}]
}

// NewSet creates a set using strategy to hash and compare keys.
func NewSet[K any](strategy hashing.Strategy[K], opts Options) *Set[K] {
	return &Set[K]{m: New[K, struct{}](strategy, opts)}
}

// Add inserts k and reports whether the set changed.
func (s *Set[K]) Add(k K) bool {
	_, loaded := s.m.PutIfAbsent(k, struct{}{})
	return !loaded
}

// Contains reports whether k is in the set.
func (s *Set[K]) Contains(k K) bool {
	return s.m.ContainsKey(k)
}

// Remove deletes k and reports whether the set changed.
func (s *Set[K]) Remove(k K) bool {
	_, ok := s.m.Delete(k)
	return ok
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

// Range calls fn for every element until fn returns false.
func (s *Set[K]) Range(fn func(k K) bool) bool {
	return s.m.Range(func(k K, _ struct{}) bool {
		return fn(k)
	})
}

// AppendTo appends every element to dst and returns the extended slice.
func (s *Set[K]) AppendTo(dst []K) []K {
	s.m.Range(func(k K, _ struct{}) bool {
		dst = append(dst, k)
		return true
	})
	return dst
}

// RetainFunc removes every element for which keep returns false and reports
// whether the set changed.
func (s *Set[K]) RetainFunc(keep func(k K) bool) bool {
	return s.m.RetainFunc(func(k K, _ struct{}) bool {
		return keep(k)
	})
}

// Trim shrinks the table to fit the current elements.
func (s *Set[K]) Trim() bool {
	return s.m.Trim()
}

// Cap returns the number of slots in the table.
func (s *Set[K]) Cap() int {
	return s.m.Cap()
}

// Clone returns an independent copy of the set.
func (s *Set[K]) Clone() *Set[K] {
	return &Set[K]{m: s.m.Clone()}
}

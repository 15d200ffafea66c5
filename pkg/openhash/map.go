package openhash

import (
	"math/bits"

	"github.com/twelveoclock/fastutil-concurrent/pkg/hashing"
)

// Map is an open-addressing hash map from K to V.
type Map[K, V any] struct {
	strategy hashing.Strategy[K]

	keys   []K
	values []V

	// zeroKey is the key that compared equal to the zero value of K when
	// it was inserted; it lives outside the table.
	hasZero   bool
	zeroKey   K
	zeroValue V

	size    int // including the zero key
	mask    int
	shift   uint
	maxFill int
	f       float32
	minN    int

	defRetValue V
}

// New creates a map using strategy to hash and compare keys.
//
// It panics if opts holds a negative expected size or a load factor outside (0, 1).
func New[K, V any](strategy hashing.Strategy[K], opts Options) *Map[K, V] {
	if strategy == nil {
		panic("openhash: nil strategy")
	}
	opts = opts.normalize()

	m := &Map[K, V]{
		strategy: strategy,
		f:        opts.LoadFactor,
	}
	m.minN = arraySize(opts.Expected, opts.LoadFactor)
	m.alloc(m.minN)
	return m
}

func (m *Map[K, V]) alloc(n int) {
	m.keys = make([]K, n)
	m.values = make([]V, n)
	m.mask = n - 1
	m.shift = uint(64 - bits.TrailingZeros(uint(n)))
	m.maxFill = maxFill(n, m.f)
}

// slot returns the home position of a key hash.
func (m *Map[K, V]) slot(h uint64) int {
	return int((h * phi) >> m.shift)
}

func (m *Map[K, V]) isZero(k K) bool {
	var zero K
	return m.strategy.Equal(k, zero)
}

// find returns the position of k in the table, or the empty position where
// it would be inserted.
func (m *Map[K, V]) find(k K) (int, bool) {
	pos := m.slot(m.strategy.Hash(k))
	for {
		cur := m.keys[pos]
		if m.isZero(cur) {
			return pos, false
		}
		if m.strategy.Equal(cur, k) {
			return pos, true
		}
		pos = (pos + 1) & m.mask
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.size
}

// IsEmpty reports whether the map holds no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.size == 0
}

// DefaultReturnValue returns the value Get and Put report for absent keys.
func (m *Map[K, V]) DefaultReturnValue() V {
	return m.defRetValue
}

// SetDefaultReturnValue sets the value Get and Put report for absent keys.
func (m *Map[K, V]) SetDefaultReturnValue(v V) {
	m.defRetValue = v
}

// Get returns the value for k, or the default return value if k is absent.
func (m *Map[K, V]) Get(k K) V {
	v, ok := m.Lookup(k)
	if !ok {
		return m.defRetValue
	}
	return v
}

// Lookup returns the value for k and whether it was present.
func (m *Map[K, V]) Lookup(k K) (V, bool) {
	if m.isZero(k) {
		if m.hasZero {
			return m.zeroValue, true
		}
		var zero V
		return zero, false
	}
	pos, ok := m.find(k)
	if !ok {
		var zero V
		return zero, false
	}
	return m.values[pos], true
}

// ContainsKey reports whether k is present.
func (m *Map[K, V]) ContainsKey(k K) bool {
	_, ok := m.Lookup(k)
	return ok
}

// Put associates v with k and returns the previous value, or the default
// return value if k was absent.
func (m *Map[K, V]) Put(k K, v V) V {
	if old, ok := m.swap(k, v); ok {
		return old
	}
	return m.defRetValue
}

// swap stores v under k and returns the previous value if there was one.
func (m *Map[K, V]) swap(k K, v V) (V, bool) {
	var zero V
	if m.isZero(k) {
		if m.hasZero {
			old := m.zeroValue
			m.zeroValue = v
			return old, true
		}
		m.hasZero = true
		m.zeroKey = k
		m.zeroValue = v
		m.size++
		return zero, false
	}

	pos, ok := m.find(k)
	if ok {
		old := m.values[pos]
		m.values[pos] = v
		return old, true
	}
	m.insertAt(pos, k, v)
	return zero, false
}

func (m *Map[K, V]) insertAt(pos int, k K, v V) {
	m.keys[pos] = k
	m.values[pos] = v
	m.size++
	if used := m.tableLen(); used >= m.maxFill {
		m.rehash(arraySize(used+1, m.f))
	}
}

func (m *Map[K, V]) tableLen() int {
	if m.hasZero {
		return m.size - 1
	}
	return m.size
}

// PutIfAbsent stores v under k unless k is present. It returns the value now
// associated with k and whether it was already there.
func (m *Map[K, V]) PutIfAbsent(k K, v V) (V, bool) {
	if m.isZero(k) {
		if m.hasZero {
			return m.zeroValue, true
		}
		m.hasZero = true
		m.zeroKey = k
		m.zeroValue = v
		m.size++
		return v, false
	}

	pos, ok := m.find(k)
	if ok {
		return m.values[pos], true
	}
	m.insertAt(pos, k, v)
	return v, false
}

// Remove deletes k and returns its value, or the default return value if k
// was absent.
func (m *Map[K, V]) Remove(k K) V {
	if v, ok := m.Delete(k); ok {
		return v
	}
	return m.defRetValue
}

// Delete deletes k and returns its value and whether it was present.
func (m *Map[K, V]) Delete(k K) (V, bool) {
	var zero V
	if m.isZero(k) {
		if !m.hasZero {
			return zero, false
		}
		old := m.zeroValue
		m.hasZero = false
		m.zeroKey = *new(K)
		m.zeroValue = zero
		m.size--
		return old, true
	}

	pos, ok := m.find(k)
	if !ok {
		return zero, false
	}
	old := m.values[pos]
	m.removeAt(pos)
	return old, true
}

func (m *Map[K, V]) removeAt(pos int) {
	m.size--
	m.shiftKeys(pos)
	if m.size < m.maxFill/4 && len(m.keys) > m.minN {
		m.rehash(len(m.keys) / 2)
	}
}

// shiftKeys closes the gap at pos by moving back every following entry of
// the same cluster whose home slot is not between the gap and itself.
func (m *Map[K, V]) shiftKeys(pos int) {
	var zeroK K
	var zeroV V
	for {
		last := pos
		pos = (pos + 1) & m.mask
		var cur K
		for {
			cur = m.keys[pos]
			if m.isZero(cur) {
				m.keys[last] = zeroK
				m.values[last] = zeroV
				return
			}
			home := m.slot(m.strategy.Hash(cur))
			if last <= pos {
				if last >= home || home > pos {
					break
				}
			} else if last >= home && home > pos {
				break
			}
			pos = (pos + 1) & m.mask
		}
		m.keys[last] = cur
		m.values[last] = m.values[pos]
	}
}

// Compute replaces the value for k with the result of fn. fn receives the
// current value and whether k is present; returning keep=false removes k.
// Compute returns the resulting value and whether k is present afterwards.
func (m *Map[K, V]) Compute(k K, fn func(old V, ok bool) (V, bool)) (V, bool) {
	var zero V
	if m.isZero(k) {
		nv, keep := fn(m.zeroValue, m.hasZero)
		switch {
		case keep && m.hasZero:
			m.zeroValue = nv
		case keep:
			m.hasZero = true
			m.zeroKey = k
			m.zeroValue = nv
			m.size++
		case m.hasZero:
			m.hasZero = false
			m.zeroKey = *new(K)
			m.zeroValue = zero
			m.size--
			return zero, false
		default:
			return zero, false
		}
		return nv, true
	}

	pos, ok := m.find(k)
	var cur V
	if ok {
		cur = m.values[pos]
	}
	nv, keep := fn(cur, ok)
	switch {
	case keep && ok:
		m.values[pos] = nv
	case keep:
		m.insertAt(pos, k, nv)
	case ok:
		m.removeAt(pos)
		return zero, false
	default:
		return zero, false
	}
	return nv, true
}

// Range calls fn for every entry until fn returns false. It reports whether
// the iteration ran to completion. fn must not modify the map.
func (m *Map[K, V]) Range(fn func(k K, v V) bool) bool {
	if m.hasZero {
		if !fn(m.zeroKey, m.zeroValue) {
			return false
		}
	}
	for i, k := range m.keys {
		if m.isZero(k) {
			continue
		}
		if !fn(k, m.values[i]) {
			return false
		}
	}
	return true
}

// RetainFunc removes every entry for which keep returns false and reports
// whether the map changed.
func (m *Map[K, V]) RetainFunc(keep func(k K, v V) bool) bool {
	var drop []K
	m.Range(func(k K, v V) bool {
		if !keep(k, v) {
			drop = append(drop, k)
		}
		return true
	})
	for _, k := range drop {
		m.Delete(k)
	}
	return len(drop) > 0
}

// Clear removes every entry. The table keeps its current capacity.
func (m *Map[K, V]) Clear() {
	if m.size == 0 {
		return
	}
	clear(m.keys)
	clear(m.values)
	var zeroV V
	m.hasZero = false
	m.zeroKey = *new(K)
	m.zeroValue = zeroV
	m.size = 0
}

// Trim shrinks the table to the smallest size able to hold the current
// entries. It reports whether the table was rebuilt.
func (m *Map[K, V]) Trim() bool {
	n := arraySize(m.tableLen(), m.f)
	if n >= len(m.keys) {
		return false
	}
	m.rehash(n)
	return true
}

// Cap returns the number of slots in the table.
func (m *Map[K, V]) Cap() int {
	return len(m.keys)
}

func (m *Map[K, V]) rehash(n int) {
	oldKeys, oldValues := m.keys, m.values
	m.alloc(n)
	for i, k := range oldKeys {
		if m.isZero(k) {
			continue
		}
		pos := m.slot(m.strategy.Hash(k))
		for !m.isZero(m.keys[pos]) {
			pos = (pos + 1) & m.mask
		}
		m.keys[pos] = k
		m.values[pos] = oldValues[i]
	}
}

// Clone returns an independent copy of the map.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := *m
	c.keys = append([]K(nil), m.keys...)
	c.values = append([]V(nil), m.values...)
	return &c
}

package hashing

import (
	"hash/maphash"
)

// Strategy hashes and compares keys of type K.
type Strategy[K any] interface {
	Hash(key K) uint64
	Equal(a, b K) bool
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type funcStrategy[K any] struct {
	hash  func(K) uint64
	equal func(a, b K) bool
}

func (s funcStrategy[K]) Hash(key K) uint64 { return s.hash(key) }

func (s funcStrategy[K]) Equal(a, b K) bool { return s.equal(a, b) }

// StrategyFunc builds a Strategy from a hash function and an equality predicate.
func StrategyFunc[K any](hash func(K) uint64, equal func(a, b K) bool) Strategy[K] {
	if hash == nil || equal == nil {
		panic("hashing: StrategyFunc requires non-nil hash and equal")
	}
	return funcStrategy[K]{hash: hash, equal: equal}
}

// seed is shared by every Comparable strategy of the process so that two
// collections of the same key type agree on hashes.
var seed = maphash.MakeSeed()

type comparableStrategy[K comparable] struct{}

func (comparableStrategy[K]) Hash(key K) uint64 { return maphash.Comparable(seed, key) }

func (comparableStrategy[K]) Equal(a, b K) bool { return a == b }

// Comparable returns a strategy for any comparable type, hashing with
// hash/maphash and comparing with ==.
//
// Integer and string keys get faster hashing from IntegerOf and String.
func Comparable[K comparable]() Strategy[K] {
	return comparableStrategy[K]{}
}

type integerStrategy[K Integer] struct{}

func (integerStrategy[K]) Hash(key K) uint64 { return Mix64(uint64(key)) }

func (integerStrategy[K]) Equal(a, b K) bool { return a == b }

// IntegerOf returns a strategy for keys of any integer type.
func IntegerOf[K Integer]() Strategy[K] {
	return integerStrategy[K]{}
}

// Int32 returns the strategy for int32 keys (fastutil "Int").
func Int32() Strategy[int32] { return integerStrategy[int32]{} }

// Int64 returns the strategy for int64 keys (fastutil "Long").
func Int64() Strategy[int64] { return integerStrategy[int64]{} }

// Uint32 returns the strategy for uint32 keys.
func Uint32() Strategy[uint32] { return integerStrategy[uint32]{} }

// Uint64 returns the strategy for uint64 keys.
func Uint64() Strategy[uint64] { return integerStrategy[uint64]{} }

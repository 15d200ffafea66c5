package cmap

import "github.com/twelveoclock/fastutil-concurrent/pkg/hashing"

// Maps with primitive keys, named after their fastutil counterparts.
type (
	Int2IntMap   = Map[int32, int32]
	Int2LongMap  = Map[int32, int64]
	Long2LongMap = Map[int64, int64]
	Long2IntMap  = Map[int64, int32]
)

// NewInt2Int creates a map from int32 to int32.
func NewInt2Int(opts ...Option) *Int2IntMap {
	return NewWithStrategy[int32, int32](hashing.Int32(), opts...)
}

// NewInt2Long creates a map from int32 to int64.
func NewInt2Long(opts ...Option) *Int2LongMap {
	return NewWithStrategy[int32, int64](hashing.Int32(), opts...)
}

// NewLong2Long creates a map from int64 to int64.
func NewLong2Long(opts ...Option) *Long2LongMap {
	return NewWithStrategy[int64, int64](hashing.Int64(), opts...)
}

// NewLong2Int creates a map from int64 to int32.
func NewLong2Int(opts ...Option) *Long2IntMap {
	return NewWithStrategy[int64, int32](hashing.Int64(), opts...)
}

// NewInt2Object creates a map from int32 to arbitrary values.
func NewInt2Object[V any](opts ...Option) *Map[int32, V] {
	return NewWithStrategy[int32, V](hashing.Int32(), opts...)
}

// NewLong2Object creates a map from int64 to arbitrary values.
func NewLong2Object[V any](opts ...Option) *Map[int64, V] {
	return NewWithStrategy[int64, V](hashing.Int64(), opts...)
}

// NewReference2Int creates a map from comparable keys to int32. Pointer keys
// compare by identity.
func NewReference2Int[K comparable](opts ...Option) *Map[K, int32] {
	return New[K, int32](opts...)
}

// NewString2Object creates a map from strings to arbitrary values, hashing
// keys with murmur3.
func NewString2Object[V any](opts ...Option) *Map[string, V] {
	return NewWithStrategy[string, V](hashing.String(), opts...)
}

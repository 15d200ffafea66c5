package hashing

import (
	"bytes"

	"github.com/spaolacci/murmur3"
)

// murmurSeed is fixed so hashes of persisted keys stay stable across runs.
const murmurSeed = 0x9747b28c

type stringStrategy struct{}

func (stringStrategy) Hash(key string) uint64 {
	return murmur3.Sum64WithSeed([]byte(key), murmurSeed)
}

func (stringStrategy) Equal(a, b string) bool { return a == b }

// String returns a MurmurHash3 strategy for string keys.
func String() Strategy[string] { return stringStrategy{} }

type bytesStrategy struct{}

func (bytesStrategy) Hash(key []byte) uint64 {
	return murmur3.Sum64WithSeed(key, murmurSeed)
}

func (bytesStrategy) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

// Bytes returns a MurmurHash3 strategy for byte-slice keys, compared by
// content. Callers must not mutate a key after inserting it.
func Bytes() Strategy[[]byte] { return bytesStrategy{} }

// Package hashing provides hash strategies for the open-addressing tables
// and the striped concurrent collections built on top of them.
//
// A Strategy couples a hash function with an equality predicate, the same
// contract as fastutil's Hash.Strategy:
//
//   - Integer strategies (Int32, Int64, Uint32, Uint64, IntegerOf) hash the
//     value itself with the murmur3 64-bit finalizer. No allocation, no boxing.
//   - String and Bytes hash with MurmurHash3 (x64, 128-bit, truncated to 64).
//   - Comparable works for any comparable key through hash/maphash.
//
// Custom strategies let callers key a collection by a projection of a value,
// e.g. case-insensitive strings:
//
//	s := hashing.StrategyFunc(
//		func(k string) uint64 { return hashing.String().Hash(strings.ToLower(k)) },
//		strings.EqualFold,
//	)
//
// Every strategy must satisfy Equal(a, b) => Hash(a) == Hash(b).
package hashing

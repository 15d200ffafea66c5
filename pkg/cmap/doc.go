// Package cmap provides lock-striped concurrent hash maps.
//
// A Map splits its entries over a fixed number of stripes. Each stripe is an
// open-addressing table from pkg/openhash guarded by its own sync.RWMutex:
//
//   - Striping: the stripe count is fixed at construction (WithStripes),
//     defaulting to GOMAXPROCS-1
//   - Primitive tables: keys and values are stored unboxed in flat slices,
//     so a Map[int64, int64] costs 16 bytes per slot
//   - Default return value: Get, Put and Remove report a configurable value
//     for absent keys, like fastutil's defaultReturnValue
//   - Snapshots: Keys, Values, Entries and Snapshot copy each stripe under
//     its read lock and return detached data
//
// Usage:
//
//	m := cmap.NewLong2Long(cmap.WithStripes(8), cmap.WithExpected(1<<20))
//	m.SetDefaultReturnValue(-1)
//	m.Put(42, 7)
//	v := m.Get(42)          // 7
//	cmap.AddTo(m, 42, 3)    // 10
//
// Thread Safety:
//
// All methods are safe for concurrent use. Single-key reads (Get, Lookup,
// ContainsKey) take one stripe read lock; single-key writes take one stripe
// write lock. Whole-map operations visit the stripes one at a time, so they
// observe each stripe consistently but not the map as a whole. Callbacks
// passed to Range run under a stripe read lock and must not write to the
// same map.
package cmap

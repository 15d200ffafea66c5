// Package openhash implements open-addressing hash tables in the style of
// fastutil's OpenHashMap and OpenHashSet.
//
// Keys and values live in two flat slices, so a Map[int64, int32] stores
// 12 bytes per slot and nothing else: no per-entry allocation, no pointer
// chasing, no interface boxing. Collisions are resolved by linear probing;
// removals use backward-shift deletion, so the table never holds tombstones.
//
// The zero key (any key that the strategy considers equal to the zero value
// of K) is kept outside the table in a dedicated slot. An empty table slot
// is therefore recognisable by its key alone.
//
// Tables are NOT safe for concurrent use. The striped collections in
// pkg/cmap and pkg/cset guard one table per stripe with a sync.RWMutex.
package openhash

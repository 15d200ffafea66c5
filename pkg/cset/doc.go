// Package cset provides lock-striped concurrent hash sets.
//
// A Set stores its elements in the stripes of a cmap.Map with an empty value
// type, so it shares the map's striping, options and locking rules. Element
// snapshots (ToSlice, AppendTo, All) copy one stripe at a time under its read
// lock and never expose the live tables.
//
// Usage:
//
//	s := cset.NewLong(cset.WithStripes(8))
//	s.Add(42)
//	s.AddAll(1, 2, 3)
//	for v := range s.All() {
//		...
//	}
package cset

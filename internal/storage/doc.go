// Package storage persists collections in an embedded key-value store.
//
// Components:
//
//   - KVEngine: byte-level store interface, implemented by BadgerEngine
//   - CollectionStore: saves and loads cmap.Map and cset.Set contents under
//     a collection name, encoding keys and values with pkg/codec
//
// Every collection occupies the key range "<name>\x00<encoded key>", so a
// collection can be replaced or dropped with a single prefix operation.
package storage

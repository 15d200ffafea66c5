// Package snapshot writes point-in-time copies of collections to files.
//
// File layout:
//
//	magic "FUTLSNAP"
//	uint32 big-endian header length, JSON header
//	body
//	blake2b-256 of everything above
//
// The body is a sequence of protowire length-delimited records, each holding
// the codec encoding of a key followed by its value (maps) or of an element
// (sets). A sealed snapshot stores the body as one XChaCha20-Poly1305 box
// instead, keyed per snapshot from a master key or passphrase.
//
// Snapshots are named "snapshot-<ULID>.snap", so file name order is creation
// order. Files are written under a temporary name and renamed when complete.
package snapshot

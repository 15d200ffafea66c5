package hashing

// Mix64 is the MurmurHash3 64-bit finalizer (fmix64). It is a bijection,
// so distinct integers never collide before masking.
func Mix64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// Mix32 is the MurmurHash3 32-bit finalizer (fmix32).
func Mix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

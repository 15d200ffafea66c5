package snapshot

import "golang.org/x/crypto/blake2b"

func blake2bSum(b []byte) []byte {
	sum := blake2b.Sum256(b)
	return sum[:]
}

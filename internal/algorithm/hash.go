package algorithm

import (
	"crypto/sha256"
	"encoding/binary"
)

// Sum computes the ring position for a key.
// SHA-256 truncated to the first 8 bytes, big-endian.
func Sum(key string) uint64 {
	h := sha256.New()
	h.Write([]byte(key))
	digest := h.Sum(nil)
	return binary.BigEndian.Uint64(digest[:8])
}

package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns a stable hex SHA-256 over the given parts.
// Parts are length-prefixed so ("ab","c") and ("a","bc") hash differently.
func HashKey(parts ...string) string {
	h := sha256.New()
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := 0; i < 8; i++ {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

package duckdb

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// fingerprint hashes parts with a length prefix on each, so ("ab", "c") and
// ("a", "bc") never collide.
func fingerprint(parts ...[]byte) string {
	hash := sha256.New()
	var size [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(part)))
		hash.Write(size[:])
		hash.Write(part)
	}
	return hex.EncodeToString(hash.Sum(nil))
}

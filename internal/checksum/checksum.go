package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data. This is the baseline
// hash recorded in the object store after every successful push or pull.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether data hashes to want. An empty want never matches,
// so untracked files are always treated as drifted.
func Matches(data []byte, want string) bool {
	return want != "" && Sum(data) == want
}

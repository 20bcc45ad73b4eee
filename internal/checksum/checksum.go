// Package checksum computes content fingerprints for change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumString returns the fingerprint of rendered note content.
// Equal fingerprints imply no meaningful content change.
func SumString(s string) string {
	return Sum([]byte(s))
}

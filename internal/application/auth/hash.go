package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// sha256Hash returns the hex SHA-256 of a token identifier for ledger storage.
// The raw identifier itself is never persisted.
func sha256Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

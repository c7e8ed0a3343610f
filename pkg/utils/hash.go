package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the lowercase hex SHA-256 digest of the input's UTF-8 bytes.
func HashContent(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

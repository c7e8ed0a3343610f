// Package integrity builds a Merkle-style root hash over the ordered fields
// of an analysis record. The root is stored with the record as a
// tamper-evidence fingerprint.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
)

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Digest hashes each field into a leaf, then pairs adjacent nodes level by
// level until a single root remains. Parents are computed over the
// concatenated hex strings of their children. An unpaired last node is
// paired with itself. Field order is significant.
func Digest(fields []string) string {
	if len(fields) == 0 {
		return hashHex("")
	}

	level := make([]string, len(fields))
	for i, f := range fields {
		level[i] = hashHex(f)
	}

	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashHex(left+right))
		}
		level = next
	}

	return level[0]
}

// Verify recomputes the root over the given fields and compares it to the
// expected value. Exposed for auditor use; nothing in the pipeline calls it.
func Verify(fields []string, expectedRoot string) bool {
	return Digest(fields) == expectedRoot
}

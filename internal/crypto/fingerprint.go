package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is the truncation length in bytes; 20 hex chars is short
// enough to compare over the phone.
const fingerprintLen = 10

// Fingerprint returns a short hex fingerprint of a public key, the SHA-256
// of the key truncated to fingerprintLen bytes.
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:fingerprintLen])
}

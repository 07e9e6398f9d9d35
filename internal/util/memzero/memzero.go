// Package memzero wipes secret key material from memory once a caller is
// done with it.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros. It uses a constant-time copy so the write
// is not elided by the compiler.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}

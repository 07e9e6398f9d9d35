// Package ratchet implements the Double Ratchet over the root key produced
// by X3DH. Each peer device gets its own ratchet conversation; cipherpost
// uses it to wrap per-message keys rather than message bodies, so one
// payload can be sealed once and addressed to many devices.
//
// The implementation keeps a bounded map of skipped message keys so
// out-of-order wrapped keys can still be opened.
package ratchet

// Package store provides file-based persistence for cipherpost's data
// directory.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking, and writes go through a temp-file rename so a crash
// never leaves a half-written file behind.
//
// The package includes stores for:
//   - Identity keys, encrypted at rest (IdentityFileStore)
//   - Pre-keys (PreKeyFileStore)
//   - The published device bundle (BundleFileStore)
//   - X3DH bootstrap records (SessionFileStore)
//   - Double Ratchet conversation state (RatchetFileStore)
//   - Trust decisions (TrustFileStore)
package store

package types

// X25519Public is a Curve25519 public key used for Diffie-Hellman.
type X25519Public [32]byte

// Slice returns the key bytes.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private scalar.
type X25519Private [32]byte

// Slice returns the key bytes.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 verification key.
type Ed25519Public [32]byte

// Slice returns the key bytes.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing key in its expanded 64-byte form.
type Ed25519Private [64]byte

// Slice returns the key bytes.
func (k Ed25519Private) Slice() []byte { return k[:] }

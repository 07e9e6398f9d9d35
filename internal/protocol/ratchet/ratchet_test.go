package ratchet_test

import (
	"bytes"
	"errors"
	"testing"

	"cipherpost/internal/crypto"
	"cipherpost/internal/domain"
	"cipherpost/internal/protocol/ratchet"
)

// makeKeyPair returns a fresh X25519 pair.
func makeKeyPair(t *testing.T) (priv domain.X25519Private, pub domain.X25519Public) {
	t.Helper()
	p, P, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	return p, P
}

func TestDoubleRatchet_OneRoundTrip(t *testing.T) {
	// Shared root key from a prior X3DH (simulated).
	rk := bytes.Repeat([]byte{0x42}, 32)

	// Two parties (A initiates).
	bPriv, bPub := makeKeyPair(t)

	aState, err := ratchet.InitAsInitiator(rk, bPub)
	if err != nil {
		t.Fatalf("InitAsInitiator: %v", err)
	}
	bState, err := ratchet.InitAsResponder(rk, bPriv, aState.DiffieHellmanPublic)
	if err != nil {
		t.Fatalf("InitAsResponder: %v", err)
	}

	header, ct, err := ratchet.Encrypt(&aState, nil, []byte("hi"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := ratchet.Decrypt(&bState, nil, header, ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != "hi" {
		t.Fatalf("got %q, want %q", pt, "hi")
	}
}

func TestDoubleRatchet_PingPong(t *testing.T) {
	rk := bytes.Repeat([]byte{0x17}, 32)
	bPriv, bPub := makeKeyPair(t)

	aState, err := ratchet.InitAsInitiator(rk, bPub)
	if err != nil {
		t.Fatalf("InitAsInitiator: %v", err)
	}
	bState, err := ratchet.InitAsResponder(rk, bPriv, aState.DiffieHellmanPublic)
	if err != nil {
		t.Fatalf("InitAsResponder: %v", err)
	}

	// A -> B, then B -> A (forces B's first-send DH ratchet step), then A -> B.
	for i, msg := range []string{"one", "two", "three"} {
		var (
			src = &aState
			dst = &bState
		)
		if i%2 == 1 {
			src, dst = &bState, &aState
		}
		header, ct, err := ratchet.Encrypt(src, nil, []byte(msg))
		if err != nil {
			t.Fatalf("Encrypt %q: %v", msg, err)
		}
		pt, err := ratchet.Decrypt(dst, nil, header, ct)
		if err != nil {
			t.Fatalf("Decrypt %q: %v", msg, err)
		}
		if string(pt) != msg {
			t.Fatalf("got %q, want %q", pt, msg)
		}
	}
}

func TestDoubleRatchet_OutOfOrder(t *testing.T) {
	rk := bytes.Repeat([]byte{0x99}, 32)
	bPriv, bPub := makeKeyPair(t)

	aState, err := ratchet.InitAsInitiator(rk, bPub)
	if err != nil {
		t.Fatalf("InitAsInitiator: %v", err)
	}
	bState, err := ratchet.InitAsResponder(rk, bPriv, aState.DiffieHellmanPublic)
	if err != nil {
		t.Fatalf("InitAsResponder: %v", err)
	}

	h1, ct1, err := ratchet.Encrypt(&aState, nil, []byte("first"))
	if err != nil {
		t.Fatalf("Encrypt first: %v", err)
	}
	h2, ct2, err := ratchet.Encrypt(&aState, nil, []byte("second"))
	if err != nil {
		t.Fatalf("Encrypt second: %v", err)
	}

	// Deliver out of order: second, then first (via the skipped-key map).
	pt2, err := ratchet.Decrypt(&bState, nil, h2, ct2)
	if err != nil {
		t.Fatalf("Decrypt second: %v", err)
	}
	if string(pt2) != "second" {
		t.Fatalf("got %q, want %q", pt2, "second")
	}
	pt1, err := ratchet.Decrypt(&bState, nil, h1, ct1)
	if err != nil {
		t.Fatalf("Decrypt first (skipped): %v", err)
	}
	if string(pt1) != "first" {
		t.Fatalf("got %q, want %q", pt1, "first")
	}
}

func TestDoubleRatchet_ReplayedMessageRejected(t *testing.T) {
	rk := bytes.Repeat([]byte{0x55}, 32)
	bPriv, bPub := makeKeyPair(t)

	aState, err := ratchet.InitAsInitiator(rk, bPub)
	if err != nil {
		t.Fatalf("InitAsInitiator: %v", err)
	}
	bState, err := ratchet.InitAsResponder(rk, bPriv, aState.DiffieHellmanPublic)
	if err != nil {
		t.Fatalf("InitAsResponder: %v", err)
	}

	header, ct, err := ratchet.Encrypt(&aState, nil, []byte("once"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := ratchet.Decrypt(&bState, nil, header, ct); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	// The message key was consumed; a second delivery names an index behind
	// the receive chain with no skipped key stored.
	if _, err := ratchet.Decrypt(&bState, nil, header, ct); !errors.Is(err, ratchet.ErrSkippedKeyNotFound) {
		t.Fatalf("replay: got %v, want ErrSkippedKeyNotFound", err)
	}
}

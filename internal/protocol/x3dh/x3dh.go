package x3dh

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"cipherpost/internal/crypto"
	"cipherpost/internal/domain"
	"cipherpost/internal/util/memzero"
)

const rootKeySize = 32

// kdfInfo domain-separates the X3DH output from other HKDF uses.
var kdfInfo = []byte("cipherpost-x3dh-v1")

// ErrBadSignedPreKeySignature is returned when a bundle's signed pre-key
// does not verify against the bundle's signing key.
var ErrBadSignedPreKeySignature = errors.New("signed pre-key signature verification failed")

// InitiatorRoot derives the root key as the initiator against a peer's
// device bundle. It verifies the signed pre-key signature, generates a fresh
// ephemeral key, and returns the root key, the pre-key IDs consumed, and the
// ephemeral public the first PreKeyMessage must carry.
func InitiatorRoot(
	id domain.Identity,
	bundle domain.DeviceBundle,
) (
	root []byte,
	signedPreKeyID domain.SignedPreKeyID,
	oneTimePreKeyID domain.OneTimePreKeyID,
	ephemeralPub domain.X25519Public,
	err error,
) {
	if !crypto.VerifyEd25519(bundle.SigningKey, bundle.SignedPreKey.Slice(), bundle.SignedPreKeySignature) {
		err = ErrBadSignedPreKeySignature
		return
	}

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return
	}

	dh1, err := crypto.DH(id.XPriv, bundle.SignedPreKey) // DH(IK_A, SPK_B)
	if err != nil {
		return
	}
	dh2, err := crypto.DH(ephPriv, bundle.IdentityKey) // DH(EK_A, IK_B)
	if err != nil {
		return
	}
	dh3, err := crypto.DH(ephPriv, bundle.SignedPreKey) // DH(EK_A, SPK_B)
	if err != nil {
		return
	}

	concat := make([]byte, 0, 32*4)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)

	if len(bundle.OneTimePreKeys) > 0 {
		opk := bundle.OneTimePreKeys[0]
		var dh4 [32]byte
		dh4, err = crypto.DH(ephPriv, opk.Pub) // DH(EK_A, OPK_B)
		if err != nil {
			return
		}
		concat = append(concat, dh4[:]...)
		oneTimePreKeyID = opk.ID
	}

	root = deriveRoot(concat)
	memzero.Zero(concat)
	memzero.Zero(ephPriv[:])

	return root, bundle.SignedPreKeyID, oneTimePreKeyID, ephPub, nil
}

// ResponderRoot recomputes the root key as the responder, using our identity,
// the private half of the signed pre-key the initiator targeted, and
// optionally the consumed one-time pre-key private.
func ResponderRoot(
	id domain.Identity,
	signedPreKeyPriv domain.X25519Private,
	oneTimePreKeyPriv *domain.X25519Private,
	pm domain.PreKeyMessage,
) ([]byte, error) {
	dh1, err := crypto.DH(signedPreKeyPriv, pm.InitiatorIdentityKey) // DH(SPK_B, IK_A)
	if err != nil {
		return nil, err
	}
	dh2, err := crypto.DH(id.XPriv, pm.EphemeralKey) // DH(IK_B, EK_A)
	if err != nil {
		return nil, err
	}
	dh3, err := crypto.DH(signedPreKeyPriv, pm.EphemeralKey) // DH(SPK_B, EK_A)
	if err != nil {
		return nil, err
	}

	concat := make([]byte, 0, 32*4)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)

	if oneTimePreKeyPriv != nil {
		dh4, err := crypto.DH(*oneTimePreKeyPriv, pm.EphemeralKey) // DH(OPK_B, EK_A)
		if err != nil {
			return nil, err
		}
		concat = append(concat, dh4[:]...)
	}

	root := deriveRoot(concat)
	memzero.Zero(concat)
	return root, nil
}

// deriveRoot runs HKDF-SHA256 over the concatenated DH outputs.
func deriveRoot(ikm []byte) []byte {
	root := make([]byte, rootKeySize)
	r := hkdf.New(sha256.New, ikm, nil, kdfInfo)
	_, _ = io.ReadFull(r, root)
	return root
}

package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// keystoreFormatVersion is the current on-disk blob format. Readers reject
// blobs written by a newer format.
const keystoreFormatVersion = 1

var errWrongPassphrase = errors.New("wrong passphrase or corrupted identity")

// kdfProfile pins the scrypt cost parameters a blob is written with. The
// parameters are stored alongside the ciphertext, so the profile can be
// raised later without breaking existing keystores.
type kdfProfile struct {
	N int
	R int
	P int
}

// defaultKDF is interactive-login strength.
var defaultKDF = kdfProfile{N: 1 << 15, R: 8, P: 1}

func (k kdfProfile) key(passphrase string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, k.N, k.R, k.P, chacha20poly1305.KeySize)
}

// blob is the on-disk JSON structure holding the ciphertext and the KDF
// parameters it was sealed with.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// sealWithPassphrase derives a key from the passphrase under prof and seals
// raw into a self-describing JSON blob. The salt doubles as associated data,
// and the key is salt-bound, so a fixed zero nonce is safe.
func sealWithPassphrase(passphrase string, raw []byte, prof kdfProfile) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := prof.key(passphrase, salt[:])
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	return json.Marshal(blob{
		V:      keystoreFormatVersion,
		Salt:   salt[:],
		N:      prof.N,
		R:      prof.R,
		P:      prof.P,
		Cipher: aead.Seal(nil, nonce, raw, salt[:]),
	})
}

// openWithPassphrase opens a blob using the KDF parameters it carries.
func openWithPassphrase(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", bl.V)
	}

	key, err := kdfProfile{N: bl.N, R: bl.R, P: bl.P}.key(passphrase, bl.Salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	pt, err := aead.Open(nil, nonce, bl.Cipher, bl.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

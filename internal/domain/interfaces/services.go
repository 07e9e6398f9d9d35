package interfaces

import (
	"context"

	domaintypes "cipherpost/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects your identity keys.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// PreKeyService generates pre-keys and assembles your device bundle.
type PreKeyService interface {
	GenerateAndStorePreKeys(passphrase string, count int) (
		domaintypes.X25519Public,
		[]domaintypes.X25519Public,
		error,
	)
	LoadDeviceBundle(
		passphrase string,
		address domaintypes.Address,
	) (domaintypes.DeviceBundle, error)
}

// Encryptor produces encrypted payloads for a set of recipients and records
// trust decisions. Excluded devices are skipped without being contacted.
type Encryptor interface {
	Encrypt(
		ctx context.Context,
		plaintext []byte,
		recipients []domaintypes.Address,
		exclude map[domaintypes.Address][]domaintypes.DeviceID,
	) (*domaintypes.EncryptedPayload, error)
	SetTrust(
		peer domaintypes.Address,
		device domaintypes.DeviceID,
		identityKey domaintypes.X25519Public,
		level domaintypes.TrustLevel,
	) error
}

// Decryptor opens encrypted payloads addressed to the local device.
type Decryptor interface {
	Decrypt(envelope domaintypes.Envelope) (domaintypes.DecryptedMessage, error)
}

// MessageService fetches queued envelopes and decrypts them.
type MessageService interface {
	ReceiveMessages(
		ctx context.Context,
		limit int,
	) ([]domaintypes.DecryptedMessage, error)
}

// TrustPolicy decides what to do with a device whose key is undecided.
// Implementations may auto-trust, consult an allow-list, or prompt.
type TrustPolicy interface {
	Decide(
		peer domaintypes.Address,
		device domaintypes.DeviceID,
		identityKey domaintypes.X25519Public,
	) (domaintypes.TrustLevel, error)
}

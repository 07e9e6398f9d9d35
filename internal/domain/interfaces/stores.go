package interfaces

import domaintypes "cipherpost/internal/domain/types"

// IdentityStore persists your long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// PreKeyStore manages signed and one-time pre-keys on disk.
type PreKeyStore interface {
	// Signed pre-key
	SaveSignedPreKey(
		id domaintypes.SignedPreKeyID,
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		sig []byte,
	) error
	LoadSignedPreKey(
		id domaintypes.SignedPreKeyID,
	) (
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		sig []byte,
		ok bool,
		err error,
	)

	// One-time pre-keys
	SaveOneTimePreKeys(pairs []domaintypes.OneTimePreKeyPair) error
	ConsumeOneTimePreKey(id domaintypes.OneTimePreKeyID) (
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		ok bool,
		err error,
	)
	ListOneTimePreKeyPublics() ([]domaintypes.OneTimePreKeyPublic, error)

	// Current signed pre-key selection
	SetCurrentSignedPreKeyID(id domaintypes.SignedPreKeyID) error
	CurrentSignedPreKeyID() (domaintypes.SignedPreKeyID, bool, error)
}

// BundleStore caches the last device bundle you published.
type BundleStore interface {
	SaveDeviceBundle(bundle domaintypes.DeviceBundle) error
	LoadDeviceBundle(address domaintypes.Address) (domaintypes.DeviceBundle, bool, error)
}

// SessionStore persists X3DH bootstrap records per peer device.
type SessionStore interface {
	SavePeerSession(key domaintypes.ConversationID, session domaintypes.PeerSession) error
	LoadPeerSession(key domaintypes.ConversationID) (domaintypes.PeerSession, bool, error)
}

// RatchetStore keeps per-device Double-Ratchet state.
type RatchetStore interface {
	SaveConversation(key domaintypes.ConversationID, conversation domaintypes.Conversation) error
	LoadConversation(key domaintypes.ConversationID) (domaintypes.Conversation, bool, error)
}

// TrustStore persists trust decisions per peer device.
type TrustStore interface {
	RecordTrust(record domaintypes.TrustRecord) error
	LookupTrust(
		peer domaintypes.Address,
		device domaintypes.DeviceID,
	) (domaintypes.TrustRecord, bool, error)
	ListTrust() ([]domaintypes.TrustRecord, error)
}

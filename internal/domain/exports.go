package domain

import (
	interfaces "cipherpost/internal/domain/interfaces"
	types "cipherpost/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address             = types.Address
	DeviceID            = types.DeviceID
	Fingerprint         = types.Fingerprint
	SignedPreKeyID      = types.SignedPreKeyID
	OneTimePreKeyID     = types.OneTimePreKeyID
	ConversationID      = types.ConversationID
	Identity            = types.Identity
	OneTimePreKeyPair   = types.OneTimePreKeyPair
	OneTimePreKeyPublic = types.OneTimePreKeyPublic
	DeviceBundle        = types.DeviceBundle
	PreKeyMessage       = types.PreKeyMessage
	Envelope            = types.Envelope
	EnvelopeKind        = types.EnvelopeKind
	Scheme              = types.Scheme
	WrappedKey          = types.WrappedKey
	EncryptedPayload    = types.EncryptedPayload
	DecryptedMessage    = types.DecryptedMessage
	RatchetHeader       = types.RatchetHeader
	RatchetState        = types.RatchetState
	Conversation        = types.Conversation
	PeerSession         = types.PeerSession
	TrustLevel          = types.TrustLevel
	TrustRecord         = types.TrustRecord
	X25519Public        = types.X25519Public
	X25519Private       = types.X25519Private
	Ed25519Public       = types.Ed25519Public
	Ed25519Private      = types.Ed25519Private
)

// Re-exported constants for envelope kinds and trust levels.
const (
	KindChat  = types.KindChat
	KindPlain = types.KindPlain

	TrustUndecided = types.TrustUndecided
	Trusted        = types.Trusted
	Distrusted     = types.Distrusted
)

// ErrBundleNotFound reports a device with no published bundle.
var ErrBundleNotFound = interfaces.ErrBundleNotFound

// ConversationKey builds the ConversationID for a peer device.
func ConversationKey(peer Address, device DeviceID) ConversationID {
	return types.ConversationKey(peer, device)
}

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	PreKeyService   = interfaces.PreKeyService
	MessageService  = interfaces.MessageService
	Encryptor       = interfaces.Encryptor
	Decryptor       = interfaces.Decryptor
	TrustPolicy     = interfaces.TrustPolicy
	Session         = interfaces.Session
	RelayClient     = interfaces.RelayClient
	IdentityStore   = interfaces.IdentityStore
	PreKeyStore     = interfaces.PreKeyStore
	BundleStore     = interfaces.BundleStore
	SessionStore    = interfaces.SessionStore
	RatchetStore    = interfaces.RatchetStore
	TrustStore      = interfaces.TrustStore
)

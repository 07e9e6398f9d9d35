package types

import "fmt"

// Address is a bare recipient identity, without a device suffix.
type Address string

// String returns the string form of the address.
func (a Address) String() string { return string(a) }

// DeviceID identifies one of possibly several devices behind an address.
type DeviceID uint32

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// SignedPreKeyID uniquely identifies a signed pre-key.
type SignedPreKeyID string

// String returns the string form of the identifier.
func (id SignedPreKeyID) String() string { return string(id) }

// OneTimePreKeyID uniquely identifies a one-time pre-key.
type OneTimePreKeyID string

// String returns the string form of the identifier.
func (id OneTimePreKeyID) String() string { return string(id) }

// ConversationID identifies the ratchet conversation with one peer device.
type ConversationID string

// String returns the string form of the conversation identifier.
func (id ConversationID) String() string { return string(id) }

// ConversationKey builds the ConversationID for a peer device.
func ConversationKey(peer Address, device DeviceID) ConversationID {
	return ConversationID(fmt.Sprintf("%s/%d", peer, device))
}

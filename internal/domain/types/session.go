package types

// PeerSession records the X3DH bootstrap with one peer device: which of the
// peer's pre-keys were used and the identity key the root was derived
// against. The root key itself lives only in the ratchet state.
type PeerSession struct {
	Peer            Address         `json:"peer"`
	DeviceID        DeviceID        `json:"device_id"`
	PeerIdentityKey X25519Public    `json:"peer_identity_key"`
	SignedPreKeyID  SignedPreKeyID  `json:"signed_pre_key_id"`
	OneTimePreKeyID OneTimePreKeyID `json:"one_time_pre_key_id,omitempty"`
	CreatedUTC      int64           `json:"created_utc"`
}

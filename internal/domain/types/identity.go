package types

// Identity holds this device's long-term X25519 and Ed25519 keys plus the
// random device ID it announces to the relay.
type Identity struct {
	DeviceID DeviceID       `json:"device_id"`
	XPub     X25519Public   `json:"xpub"`
	XPriv    X25519Private  `json:"xpriv"`
	EdPub    Ed25519Public  `json:"edpub"`
	EdPriv   Ed25519Private `json:"edpriv"`
}

package types

// EnvelopeKind distinguishes encrypted chat payloads from plaintext advisories.
type EnvelopeKind string

const (
	// KindChat marks an envelope carrying an encrypted payload.
	KindChat EnvelopeKind = "chat"
	// KindPlain marks a plaintext advisory notice.
	KindPlain EnvelopeKind = "plain"
)

// WrappedKey is the message key sealed for one recipient device under that
// device's ratchet session. The first key sent to a device carries a
// PreKeyMessage so the device can bootstrap the session.
type WrappedKey struct {
	DeviceID DeviceID       `json:"device_id"`
	Header   RatchetHeader  `json:"header"`
	PreKey   *PreKeyMessage `json:"pre_key,omitempty"`
	Key      []byte         `json:"key"`
}

// EncryptedPayload seals one plaintext for a set of recipient devices.
// The payload body is encrypted once with a random message key; the key is
// wrapped per device in Keys.
type EncryptedPayload struct {
	Scheme Scheme       `json:"scheme"`
	Nonce  []byte       `json:"nonce"`
	Cipher []byte       `json:"cipher"`
	Keys   []WrappedKey `json:"keys"`
}

// Scheme is the encryption-method announcement attached to outgoing
// envelopes so receiving clients know which mechanism was used.
type Scheme string

// Envelope is the wire-format message posted to and fetched from the relay.
type Envelope struct {
	ID         string            `json:"id"`
	From       Address           `json:"from"`
	FromDevice DeviceID          `json:"from_device"`
	To         Address           `json:"to"`
	Kind       EnvelopeKind      `json:"kind"`
	Scheme     Scheme            `json:"scheme,omitempty"`
	Body       string            `json:"body,omitempty"`
	Encrypted  *EncryptedPayload `json:"encrypted,omitempty"`
	Timestamp  int64             `json:"timestamp"`
}

// DecryptedMessage is what the receive path returns.
type DecryptedMessage struct {
	From       Address  `json:"from"`
	FromDevice DeviceID `json:"from_device"`
	To         Address  `json:"to"`
	Plaintext  []byte   `json:"plaintext"`
	Timestamp  int64    `json:"timestamp"`
}

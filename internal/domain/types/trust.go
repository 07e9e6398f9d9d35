package types

// TrustLevel is a recorded judgment about one device's identity key.
type TrustLevel int

const (
	// TrustUndecided means no decision has been recorded yet.
	TrustUndecided TrustLevel = iota
	// Trusted devices are included when encrypting.
	Trusted
	// Distrusted devices are skipped when encrypting.
	Distrusted
)

// String returns a human-readable trust level.
func (l TrustLevel) String() string {
	switch l {
	case Trusted:
		return "trusted"
	case Distrusted:
		return "distrusted"
	default:
		return "undecided"
	}
}

// TrustRecord pins a trust decision to a specific device identity key.
// A later key change for the same device does not inherit the decision.
type TrustRecord struct {
	Peer        Address      `json:"peer"`
	DeviceID    DeviceID     `json:"device_id"`
	IdentityKey X25519Public `json:"identity_key"`
	Level       TrustLevel   `json:"level"`
	DecidedUTC  int64        `json:"decided_utc"`
}

package trust

import (
	"fmt"
	"log/slog"

	"cipherpost/internal/domain"
)

// AutoTrust trusts every undecided device on first use.
type AutoTrust struct {
	Log *slog.Logger
}

// Decide records the device as trusted.
func (p AutoTrust) Decide(
	peer domain.Address,
	device domain.DeviceID,
	_ domain.X25519Public,
) (domain.TrustLevel, error) {
	if p.Log != nil {
		p.Log.Info("auto-trusting device on first use",
			"peer", peer, "device", device)
	}
	return domain.Trusted, nil
}

// DenyAll distrusts every undecided device. Users must record decisions
// explicitly before sending.
type DenyAll struct{}

// Decide records the device as distrusted.
func (DenyAll) Decide(
	peer domain.Address,
	device domain.DeviceID,
	_ domain.X25519Public,
) (domain.TrustLevel, error) {
	return domain.Distrusted, nil
}

// PolicyByName resolves a policy name from configuration.
func PolicyByName(name string, log *slog.Logger) (domain.TrustPolicy, error) {
	switch name {
	case "", "tofu", "auto":
		return AutoTrust{Log: log}, nil
	case "deny":
		return DenyAll{}, nil
	default:
		return nil, fmt.Errorf("unknown trust policy %q (want tofu or deny)", name)
	}
}

// Compile-time assertions that the shipped policies implement domain.TrustPolicy.
var (
	_ domain.TrustPolicy = AutoTrust{}
	_ domain.TrustPolicy = DenyAll{}
)

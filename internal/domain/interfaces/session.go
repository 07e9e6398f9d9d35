package interfaces

import (
	"context"

	domaintypes "cipherpost/internal/domain/types"
)

// Session is a logged-in connection to the relay. Open announces presence
// and fetches the roster; Close is idempotent and releases the session
// exactly once. SendPlain is best-effort: advisory notices must never fail
// the caller.
type Session interface {
	Open(ctx context.Context) error
	SendEnvelope(ctx context.Context, envelope domaintypes.Envelope) error
	SendPlain(ctx context.Context, to domaintypes.Address, text string)
	Roster(ctx context.Context) ([]domaintypes.Address, error)
	Close() error
}

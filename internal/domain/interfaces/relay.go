package interfaces

import (
	"context"
	"errors"

	domaintypes "cipherpost/internal/domain/types"
)

// ErrBundleNotFound is returned by RelayClient implementations when a device
// has no published bundle. Encryption treats it as a missing-bundle problem
// rather than a transport failure.
var ErrBundleNotFound = errors.New("device bundle not found")

// RelayClient is how we talk to the store-and-forward relay, all with context.
type RelayClient interface {
	PublishDeviceBundle(ctx context.Context, bundle domaintypes.DeviceBundle) error
	FetchDeviceList(
		ctx context.Context,
		address domaintypes.Address,
	) ([]domaintypes.DeviceID, error)
	FetchDeviceBundle(
		ctx context.Context,
		address domaintypes.Address,
		device domaintypes.DeviceID,
	) (domaintypes.DeviceBundle, error)

	SendEnvelope(ctx context.Context, envelope domaintypes.Envelope) error
	FetchEnvelopes(
		ctx context.Context,
		address domaintypes.Address,
		limit int,
	) ([]domaintypes.Envelope, error)
	AckEnvelopes(ctx context.Context, address domaintypes.Address, count int) error

	AnnouncePresence(ctx context.Context, address domaintypes.Address) error
	FetchRoster(ctx context.Context, address domaintypes.Address) ([]domaintypes.Address, error)
}

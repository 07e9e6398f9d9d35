package omemo

import (
	"errors"
	"fmt"

	"cipherpost/internal/domain"
)

var (
	// ErrMissingBundle marks a device whose published key material could not
	// be found. The device can be excluded and the attempt retried.
	ErrMissingBundle = errors.New("missing key bundle")

	// ErrNoEligibleDevices is returned when exclusions and distrust
	// decisions leave no device to encrypt to.
	ErrNoEligibleDevices = errors.New("no eligible devices to encrypt to")

	// ErrNotForThisDevice is returned by Decrypt when an envelope carries no
	// wrapped key for the local device.
	ErrNotForThisDevice = errors.New("envelope carries no key for this device")
)

// TrustUndecidedError reports a device whose identity key has no recorded
// trust decision. Callers must decide before encryption can proceed.
type TrustUndecidedError struct {
	Recipient   domain.Address
	Device      domain.DeviceID
	IdentityKey domain.X25519Public
}

func (e *TrustUndecidedError) Error() string {
	return fmt.Sprintf("trust undecided for device %d of %s", e.Device, e.Recipient)
}

// DeviceProblem is one per-device failure accumulated while preparing an
// encryption attempt.
type DeviceProblem struct {
	Recipient domain.Address
	Device    domain.DeviceID
	Err       error
}

func (p DeviceProblem) Unwrap() error { return p.Err }

func (p DeviceProblem) Error() string {
	return fmt.Sprintf("device %d of %s: %v", p.Device, p.Recipient, p.Err)
}

// PrepareFailedError reports that the provider tried everything it could and
// is left with per-device problems the caller must resolve or explicitly
// ignore via the exclusion set.
type PrepareFailedError struct {
	Problems []DeviceProblem
}

func (e *PrepareFailedError) Error() string {
	return fmt.Sprintf("encryption prepare failed for %d device(s)", len(e.Problems))
}

// FetchError reports a transport failure while retrieving a recipient's
// device information. It is not locally recoverable.
type FetchError struct {
	Recipient domain.Address
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching device information for %s: %v", e.Recipient, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

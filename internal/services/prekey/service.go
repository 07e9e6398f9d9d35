package prekey

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cipherpost/internal/crypto"
	"cipherpost/internal/domain"
)

// ErrNoSignedPreKey is returned when no current signed pre-key exists yet.
var ErrNoSignedPreKey = errors.New("no signed pre-key available; run register first")

// Service manages pre-key pairs and builds the public device bundle.
type Service struct {
	ids     domain.IdentityStore
	prekeys domain.PreKeyStore
	bundles domain.BundleStore
}

// New constructs a pre-key service with the given stores.
func New(
	ids domain.IdentityStore,
	prekeys domain.PreKeyStore,
	bundles domain.BundleStore,
) *Service {
	return &Service{ids: ids, prekeys: prekeys, bundles: bundles}
}

// GenerateAndStorePreKeys creates a signed pre-key pair and count one-time
// pairs, and marks the new signed pre-key as current.
func (s *Service) GenerateAndStorePreKeys(
	passphrase string,
	count int,
) (domain.X25519Public, []domain.X25519Public, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.X25519Public{}, nil, err
	}

	// Signed pre-key, bound to our Ed25519 identity.
	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.X25519Public{}, nil, err
	}
	spkID := domain.SignedPreKeyID("spk-" + uuid.NewString())
	sig := crypto.SignEd25519(id.EdPriv, spkPub.Slice())
	if err := s.prekeys.SaveSignedPreKey(spkID, spkPriv, spkPub, sig); err != nil {
		return domain.X25519Public{}, nil, err
	}
	if err := s.prekeys.SetCurrentSignedPreKeyID(spkID); err != nil {
		return domain.X25519Public{}, nil, err
	}

	// One-time pre-keys.
	pairs := make([]domain.OneTimePreKeyPair, 0, count)
	publics := make([]domain.X25519Public, 0, count)
	for i := 0; i < count; i++ {
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return domain.X25519Public{}, nil, err
		}
		pairs = append(pairs, domain.OneTimePreKeyPair{
			ID:   domain.OneTimePreKeyID("opk-" + uuid.NewString()),
			Priv: priv,
			Pub:  pub,
		})
		publics = append(publics, pub)
	}
	if err := s.prekeys.SaveOneTimePreKeys(pairs); err != nil {
		return domain.X25519Public{}, nil, err
	}
	return spkPub, publics, nil
}

// LoadDeviceBundle assembles the public bundle from the current signed
// pre-key and one-time pre-key list, caches it, and returns it.
func (s *Service) LoadDeviceBundle(
	passphrase string,
	address domain.Address,
) (domain.DeviceBundle, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.DeviceBundle{}, err
	}

	spkID, ok, err := s.prekeys.CurrentSignedPreKeyID()
	if err != nil {
		return domain.DeviceBundle{}, err
	}
	if !ok {
		return domain.DeviceBundle{}, ErrNoSignedPreKey
	}
	_, spkPub, sig, found, err := s.prekeys.LoadSignedPreKey(spkID)
	if err != nil {
		return domain.DeviceBundle{}, err
	}
	if !found {
		return domain.DeviceBundle{}, fmt.Errorf("current signed pre-key %q missing from store", spkID)
	}

	oneTime, err := s.prekeys.ListOneTimePreKeyPublics()
	if err != nil {
		return domain.DeviceBundle{}, err
	}

	bundle := domain.DeviceBundle{
		Address:               address,
		DeviceID:              id.DeviceID,
		IdentityKey:           id.XPub,
		SigningKey:            id.EdPub,
		SignedPreKeyID:        spkID,
		SignedPreKey:          spkPub,
		SignedPreKeySignature: sig,
		OneTimePreKeys:        oneTime,
	}
	if err := s.bundles.SaveDeviceBundle(bundle); err != nil {
		return domain.DeviceBundle{}, err
	}
	return bundle, nil
}

// Compile-time assertion that Service implements domain.PreKeyService.
var _ domain.PreKeyService = (*Service)(nil)

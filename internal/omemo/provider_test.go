package omemo_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cipherpost/internal/crypto"
	"cipherpost/internal/domain"
	"cipherpost/internal/omemo"
	"cipherpost/internal/store"
)

// fakeRelay is an in-memory domain.RelayClient for provider tests.
type fakeRelay struct {
	mu      sync.Mutex
	devices map[domain.Address][]domain.DeviceID
	bundles map[domain.ConversationID]domain.DeviceBundle
	listErr error
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		devices: make(map[domain.Address][]domain.DeviceID),
		bundles: make(map[domain.ConversationID]domain.DeviceBundle),
	}
}

func (f *fakeRelay) PublishDeviceBundle(_ context.Context, b domain.DeviceBundle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := domain.ConversationKey(b.Address, b.DeviceID)
	if _, ok := f.bundles[key]; !ok {
		f.devices[b.Address] = append(f.devices[b.Address], b.DeviceID)
	}
	f.bundles[key] = b
	return nil
}

func (f *fakeRelay) FetchDeviceList(_ context.Context, a domain.Address) ([]domain.DeviceID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.DeviceID(nil), f.devices[a]...), nil
}

// FetchDeviceBundle hands out at most one one-time pre-key and retires it,
// like the relay server does.
func (f *fakeRelay) FetchDeviceBundle(
	_ context.Context,
	a domain.Address,
	d domain.DeviceID,
) (domain.DeviceBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := domain.ConversationKey(a, d)
	b, ok := f.bundles[key]
	if !ok {
		return domain.DeviceBundle{}, domain.ErrBundleNotFound
	}
	if len(b.OneTimePreKeys) > 0 {
		remaining := b
		remaining.OneTimePreKeys = b.OneTimePreKeys[1:]
		f.bundles[key] = remaining
		b.OneTimePreKeys = b.OneTimePreKeys[:1]
	}
	return b, nil
}

func (f *fakeRelay) SendEnvelope(context.Context, domain.Envelope) error { return nil }
func (f *fakeRelay) FetchEnvelopes(context.Context, domain.Address, int) ([]domain.Envelope, error) {
	return nil, nil
}
func (f *fakeRelay) AckEnvelopes(context.Context, domain.Address, int) error     { return nil }
func (f *fakeRelay) AnnouncePresence(context.Context, domain.Address) error      { return nil }
func (f *fakeRelay) FetchRoster(context.Context, domain.Address) ([]domain.Address, error) {
	return nil, nil
}

// device bundles a provider with the key material it published.
type device struct {
	provider *omemo.Provider
	bundle   domain.DeviceBundle
}

// newDevice creates a full local device (identity, pre-keys, stores) for
// addr, publishes its bundle, and returns a provider over the fake relay.
func newDevice(t *testing.T, rc *fakeRelay, addr domain.Address, id domain.DeviceID) device {
	t.Helper()
	dir := t.TempDir()

	xPriv, xPub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	edPriv, edPub, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	identity := domain.Identity{DeviceID: id, XPub: xPub, XPriv: xPriv, EdPub: edPub, EdPriv: edPriv}

	prekeys := store.NewPreKeyFileStore(dir)
	spkPriv, spkPub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	spkID := domain.SignedPreKeyID(fmt.Sprintf("spk-%s-%d", addr, id))
	sig := crypto.SignEd25519(edPriv, spkPub.Slice())
	require.NoError(t, prekeys.SaveSignedPreKey(spkID, spkPriv, spkPub, sig))
	require.NoError(t, prekeys.SetCurrentSignedPreKeyID(spkID))

	var (
		pairs   []domain.OneTimePreKeyPair
		publics []domain.OneTimePreKeyPublic
	)
	for i := 0; i < 2; i++ {
		opkPriv, opkPub, err := crypto.GenerateX25519()
		require.NoError(t, err)
		opkID := domain.OneTimePreKeyID(fmt.Sprintf("opk-%s-%d-%d", addr, id, i))
		pairs = append(pairs, domain.OneTimePreKeyPair{ID: opkID, Priv: opkPriv, Pub: opkPub})
		publics = append(publics, domain.OneTimePreKeyPublic{ID: opkID, Pub: opkPub})
	}
	require.NoError(t, prekeys.SaveOneTimePreKeys(pairs))

	bundle := domain.DeviceBundle{
		Address:               addr,
		DeviceID:              id,
		IdentityKey:           xPub,
		SigningKey:            edPub,
		SignedPreKeyID:        spkID,
		SignedPreKey:          spkPub,
		SignedPreKeySignature: sig,
		OneTimePreKeys:        publics,
	}
	require.NoError(t, rc.PublishDeviceBundle(context.Background(), bundle))

	provider := omemo.NewProvider(
		addr,
		identity,
		rc,
		prekeys,
		store.NewSessionFileStore(dir),
		store.NewRatchetFileStore(dir),
		store.NewTrustFileStore(dir),
		nil,
	)
	return device{provider: provider, bundle: bundle}
}

func TestProvider_EncryptDecryptRoundTrip(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRelay()
	alice := newDevice(t, rc, "alice@relay", 1)
	bob := newDevice(t, rc, "bob@relay", 2)

	// Alice trusts Bob's device explicitly; Bob will TOFU Alice on receive.
	require.NoError(t, alice.provider.SetTrust(
		"bob@relay", 2, bob.bundle.IdentityKey, domain.Trusted))

	payload, err := alice.provider.Encrypt(ctx, []byte("hello bob"),
		[]domain.Address{"bob@relay"}, nil)
	require.NoError(t, err)
	require.Equal(t, omemo.Scheme, payload.Scheme)
	require.Len(t, payload.Keys, 1)
	require.NotNil(t, payload.Keys[0].PreKey, "first message must carry a pre-key message")

	env := domain.Envelope{
		ID:         "e-1",
		From:       "alice@relay",
		FromDevice: 1,
		To:         "bob@relay",
		Kind:       domain.KindChat,
		Scheme:     payload.Scheme,
		Encrypted:  payload,
	}
	msg, err := bob.provider.Decrypt(env)
	require.NoError(t, err)
	require.Equal(t, "hello bob", string(msg.Plaintext))

	// Bob replies without an explicit SetTrust: TOFU recorded on receive.
	reply, err := bob.provider.Encrypt(ctx, []byte("hi alice"),
		[]domain.Address{"alice@relay"}, nil)
	require.NoError(t, err)

	replyEnv := domain.Envelope{
		ID:         "e-2",
		From:       "bob@relay",
		FromDevice: 2,
		To:         "alice@relay",
		Kind:       domain.KindChat,
		Scheme:     reply.Scheme,
		Encrypted:  reply,
	}
	got, err := alice.provider.Decrypt(replyEnv)
	require.NoError(t, err)
	require.Equal(t, "hi alice", string(got.Plaintext))

	// Second message from Alice reuses the session: no pre-key message.
	payload2, err := alice.provider.Encrypt(ctx, []byte("again"),
		[]domain.Address{"bob@relay"}, nil)
	require.NoError(t, err)
	require.Nil(t, payload2.Keys[0].PreKey)
}

// Each initiator must bootstrap with its own one-time pre-key; reusing an
// already-consumed key would leave the responder unable to derive the same
// root and the first message would be lost.
func TestProvider_EachInitiatorGetsFreshOneTimePreKey(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRelay()
	bob := newDevice(t, rc, "bob@relay", 2)

	firstContact := func(from device, fromAddr domain.Address, fromID domain.DeviceID, text string) {
		t.Helper()
		require.NoError(t, from.provider.SetTrust(
			"bob@relay", 2, bob.bundle.IdentityKey, domain.Trusted))
		payload, err := from.provider.Encrypt(ctx, []byte(text),
			[]domain.Address{"bob@relay"}, nil)
		require.NoError(t, err)

		msg, err := bob.provider.Decrypt(domain.Envelope{
			ID:         "e-" + string(fromAddr),
			From:       fromAddr,
			FromDevice: fromID,
			To:         "bob@relay",
			Kind:       domain.KindChat,
			Scheme:     payload.Scheme,
			Encrypted:  payload,
		})
		require.NoError(t, err)
		require.Equal(t, text, string(msg.Plaintext))
	}

	alice := newDevice(t, rc, "alice@relay", 1)
	carol := newDevice(t, rc, "carol@relay", 3)
	dave := newDevice(t, rc, "dave@relay", 4)

	firstContact(alice, "alice@relay", 1, "hello from alice")
	firstContact(carol, "carol@relay", 3, "hello from carol")

	// Bob published two one-time pre-keys; the third initiator gets a bundle
	// without one and the handshake falls back to the 3-DH derivation.
	firstContact(dave, "dave@relay", 4, "hello from dave")
}

func TestProvider_UndecidedDeviceSignalsTrustError(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRelay()
	alice := newDevice(t, rc, "alice@relay", 1)
	bob := newDevice(t, rc, "bob@relay", 2)

	_, err := alice.provider.Encrypt(ctx, []byte("x"), []domain.Address{"bob@relay"}, nil)
	var trustErr *omemo.TrustUndecidedError
	require.ErrorAs(t, err, &trustErr)
	require.Equal(t, domain.Address("bob@relay"), trustErr.Recipient)
	require.Equal(t, domain.DeviceID(2), trustErr.Device)
	require.Equal(t, bob.bundle.IdentityKey, trustErr.IdentityKey)
}

func TestProvider_MissingBundleAccumulatesProblems(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRelay()
	alice := newDevice(t, rc, "alice@relay", 1)

	// A device is announced but never published a bundle.
	rc.devices["ghost@relay"] = []domain.DeviceID{99}

	_, err := alice.provider.Encrypt(ctx, []byte("x"), []domain.Address{"ghost@relay"}, nil)
	var prepErr *omemo.PrepareFailedError
	require.ErrorAs(t, err, &prepErr)
	require.Len(t, prepErr.Problems, 1)
	require.Equal(t, domain.DeviceID(99), prepErr.Problems[0].Device)
	require.ErrorIs(t, prepErr.Problems[0].Err, omemo.ErrMissingBundle)

	// Excluding the faulty device leaves nothing to encrypt to.
	_, err = alice.provider.Encrypt(ctx, []byte("x"), []domain.Address{"ghost@relay"},
		map[domain.Address][]domain.DeviceID{"ghost@relay": {99}})
	require.ErrorIs(t, err, omemo.ErrNoEligibleDevices)
}

func TestProvider_RelayFailureSignalsFetchError(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRelay()
	alice := newDevice(t, rc, "alice@relay", 1)
	rc.listErr = errors.New("connection refused")

	_, err := alice.provider.Encrypt(ctx, []byte("x"), []domain.Address{"bob@relay"}, nil)
	var fetchErr *omemo.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, domain.Address("bob@relay"), fetchErr.Recipient)
}

func TestProvider_DistrustedDeviceIsSkipped(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRelay()
	alice := newDevice(t, rc, "alice@relay", 1)
	bob := newDevice(t, rc, "bob@relay", 2)

	require.NoError(t, alice.provider.SetTrust(
		"bob@relay", 2, bob.bundle.IdentityKey, domain.Distrusted))

	_, err := alice.provider.Encrypt(ctx, []byte("x"), []domain.Address{"bob@relay"}, nil)
	require.ErrorIs(t, err, omemo.ErrNoEligibleDevices)
}

func TestProvider_DecryptRejectsForeignEnvelope(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRelay()
	alice := newDevice(t, rc, "alice@relay", 1)
	bob := newDevice(t, rc, "bob@relay", 2)
	carol := newDevice(t, rc, "carol@relay", 3)

	require.NoError(t, alice.provider.SetTrust(
		"bob@relay", 2, bob.bundle.IdentityKey, domain.Trusted))
	payload, err := alice.provider.Encrypt(ctx, []byte("for bob only"),
		[]domain.Address{"bob@relay"}, nil)
	require.NoError(t, err)

	env := domain.Envelope{
		From:       "alice@relay",
		FromDevice: 1,
		To:         "bob@relay",
		Kind:       domain.KindChat,
		Encrypted:  payload,
	}
	_, err = carol.provider.Decrypt(env)
	require.ErrorIs(t, err, omemo.ErrNotForThisDevice)
}

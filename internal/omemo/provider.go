package omemo

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"cipherpost/internal/domain"
	"cipherpost/internal/protocol/ratchet"
	"cipherpost/internal/protocol/x3dh"
	"cipherpost/internal/util/memzero"
)

// Scheme is the encryption-method announcement attached to outgoing
// envelopes.
const Scheme domain.Scheme = "cipherpost:omemo-dr:1"

const messageKeySize = chacha20poly1305.KeySize

// Provider encrypts to and decrypts from multi-device peers.
type Provider struct {
	me       domain.Address
	identity domain.Identity
	relay    domain.RelayClient
	prekeys  domain.PreKeyStore
	sessions domain.SessionStore
	ratchets domain.RatchetStore
	trust    domain.TrustStore
	log      *slog.Logger
}

// NewProvider constructs a Provider for the local identity.
func NewProvider(
	me domain.Address,
	identity domain.Identity,
	relay domain.RelayClient,
	prekeys domain.PreKeyStore,
	sessions domain.SessionStore,
	ratchets domain.RatchetStore,
	trust domain.TrustStore,
	log *slog.Logger,
) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		me:       me,
		identity: identity,
		relay:    relay,
		prekeys:  prekeys,
		sessions: sessions,
		ratchets: ratchets,
		trust:    trust,
		log:      log,
	}
}

// target is one device an encryption attempt will wrap the message key for.
type target struct {
	recipient domain.Address
	bundle    domain.DeviceBundle
}

// Encrypt seals plaintext for every trusted device of every recipient,
// skipping devices listed in exclude. See the package documentation for the
// error taxonomy callers dispatch on.
func (p *Provider) Encrypt(
	ctx context.Context,
	plaintext []byte,
	recipients []domain.Address,
	exclude map[domain.Address][]domain.DeviceID,
) (*domain.EncryptedPayload, error) {
	var (
		targets  []target
		problems []DeviceProblem
	)
	for _, rcpt := range recipients {
		devices, err := p.relay.FetchDeviceList(ctx, rcpt)
		if err != nil {
			return nil, &FetchError{Recipient: rcpt, Err: err}
		}
		for _, dev := range devices {
			if excluded(exclude[rcpt], dev) {
				p.log.Debug("skipping excluded device", "peer", rcpt, "device", dev)
				continue
			}

			bundle, err := p.relay.FetchDeviceBundle(ctx, rcpt, dev)
			if errors.Is(err, domain.ErrBundleNotFound) {
				problems = append(problems, DeviceProblem{
					Recipient: rcpt,
					Device:    dev,
					Err:       ErrMissingBundle,
				})
				continue
			}
			if err != nil {
				return nil, &FetchError{Recipient: rcpt, Err: err}
			}

			rec, ok, err := p.trust.LookupTrust(rcpt, dev)
			if err != nil {
				return nil, err
			}
			// A decision is only valid for the key it was made for; a key
			// change resets the device to undecided.
			if !ok || rec.IdentityKey != bundle.IdentityKey || rec.Level == domain.TrustUndecided {
				return nil, &TrustUndecidedError{
					Recipient:   rcpt,
					Device:      dev,
					IdentityKey: bundle.IdentityKey,
				}
			}
			if rec.Level == domain.Distrusted {
				p.log.Debug("skipping distrusted device", "peer", rcpt, "device", dev)
				continue
			}
			targets = append(targets, target{recipient: rcpt, bundle: bundle})
		}
	}

	if len(problems) > 0 {
		return nil, &PrepareFailedError{Problems: problems}
	}
	if len(targets) == 0 {
		return nil, ErrNoEligibleDevices
	}

	// Seal the body once under a random message key.
	mk := make([]byte, messageKeySize)
	if _, err := rand.Read(mk); err != nil {
		return nil, err
	}
	defer memzero.Zero(mk)

	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	payload := &domain.EncryptedPayload{
		Scheme: Scheme,
		Nonce:  nonce,
		Cipher: aead.Seal(nil, nonce, plaintext, nil),
	}

	// Wrap the message key per device.
	for _, tgt := range targets {
		wk, err := p.wrapForDevice(tgt.bundle, mk)
		if err != nil {
			return nil, fmt.Errorf("wrapping key for device %d of %s: %w",
				tgt.bundle.DeviceID, tgt.recipient, err)
		}
		payload.Keys = append(payload.Keys, wk)
	}
	return payload, nil
}

// wrapForDevice seals the message key under the device's ratchet session,
// bootstrapping it via X3DH on first contact.
func (p *Provider) wrapForDevice(
	bundle domain.DeviceBundle,
	messageKey []byte,
) (domain.WrappedKey, error) {
	key := domain.ConversationKey(bundle.Address, bundle.DeviceID)

	conv, found, err := p.ratchets.LoadConversation(key)
	if err != nil {
		return domain.WrappedKey{}, err
	}

	var pm *domain.PreKeyMessage
	if !found {
		root, spkID, opkID, ephPub, err := x3dh.InitiatorRoot(p.identity, bundle)
		if err != nil {
			return domain.WrappedKey{}, err
		}
		st, err := ratchet.InitAsInitiator(root, bundle.IdentityKey)
		memzero.Zero(root)
		if err != nil {
			return domain.WrappedKey{}, err
		}
		conv = domain.Conversation{Peer: key, State: st}
		pm = &domain.PreKeyMessage{
			InitiatorIdentityKey: p.identity.XPub,
			EphemeralKey:         ephPub,
			SignedPreKeyID:       spkID,
			OneTimePreKeyID:      opkID,
		}
		if err := p.sessions.SavePeerSession(key, domain.PeerSession{
			Peer:            bundle.Address,
			DeviceID:        bundle.DeviceID,
			PeerIdentityKey: bundle.IdentityKey,
			SignedPreKeyID:  spkID,
			OneTimePreKeyID: opkID,
			CreatedUTC:      time.Now().Unix(),
		}); err != nil {
			return domain.WrappedKey{}, err
		}
		p.log.Debug("bootstrapped session", "peer", bundle.Address, "device", bundle.DeviceID)
	}

	header, wrapped, err := ratchet.Encrypt(&conv.State, nil, messageKey)
	if err != nil {
		return domain.WrappedKey{}, err
	}
	// Persist updated ratchet state before the envelope leaves, so a crash
	// cannot reuse a chain position.
	if err := p.ratchets.SaveConversation(key, conv); err != nil {
		return domain.WrappedKey{}, err
	}
	return domain.WrappedKey{
		DeviceID: bundle.DeviceID,
		Header:   header,
		PreKey:   pm,
		Key:      wrapped,
	}, nil
}

// Decrypt opens an encrypted envelope addressed to the local device,
// bootstrapping a responder-side session from the PreKeyMessage when this is
// the first message from the sending device.
func (p *Provider) Decrypt(env domain.Envelope) (domain.DecryptedMessage, error) {
	if env.Encrypted == nil {
		return domain.DecryptedMessage{}, fmt.Errorf("envelope %s has no encrypted payload", env.ID)
	}

	var wk *domain.WrappedKey
	for i := range env.Encrypted.Keys {
		if env.Encrypted.Keys[i].DeviceID == p.identity.DeviceID {
			wk = &env.Encrypted.Keys[i]
			break
		}
	}
	if wk == nil {
		return domain.DecryptedMessage{}, ErrNotForThisDevice
	}

	key := domain.ConversationKey(env.From, env.FromDevice)
	conv, found, err := p.ratchets.LoadConversation(key)
	if err != nil {
		return domain.DecryptedMessage{}, err
	}
	if !found {
		conv, err = p.bootstrapResponder(env, *wk)
		if err != nil {
			return domain.DecryptedMessage{}, err
		}
	}

	mk, err := ratchet.Decrypt(&conv.State, nil, wk.Header, wk.Key)
	if err != nil {
		return domain.DecryptedMessage{}, fmt.Errorf("unwrapping key from %q: %w", env.From, err)
	}
	defer memzero.Zero(mk)

	if err := p.ratchets.SaveConversation(key, conv); err != nil {
		return domain.DecryptedMessage{}, fmt.Errorf("save conversation %q: %w", key, err)
	}

	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return domain.DecryptedMessage{}, err
	}
	plain, err := aead.Open(nil, env.Encrypted.Nonce, env.Encrypted.Cipher, nil)
	if err != nil {
		return domain.DecryptedMessage{}, fmt.Errorf("opening payload from %q: %w", env.From, err)
	}

	return domain.DecryptedMessage{
		From:       env.From,
		FromDevice: env.FromDevice,
		To:         env.To,
		Plaintext:  plain,
		Timestamp:  env.Timestamp,
	}, nil
}

// bootstrapResponder derives the responder-side ratchet state from the
// PreKeyMessage in the first wrapped key from a device. The sender's device
// key is recorded as trusted on first use so replies do not stall.
func (p *Provider) bootstrapResponder(
	env domain.Envelope,
	wk domain.WrappedKey,
) (domain.Conversation, error) {
	if wk.PreKey == nil {
		return domain.Conversation{}, fmt.Errorf(
			"no session with device %d of %s and no pre-key message", env.FromDevice, env.From)
	}
	if len(wk.Header.DiffieHellmanPublicKey) != 32 {
		return domain.Conversation{}, fmt.Errorf("malformed ratchet header from %q", env.From)
	}
	pm := *wk.PreKey

	spkPriv, _, _, ok, err := p.prekeys.LoadSignedPreKey(pm.SignedPreKeyID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !ok {
		return domain.Conversation{}, fmt.Errorf("signed pre-key %q not found", pm.SignedPreKeyID)
	}

	// The initiator mixed this one-time pre-key into its root; without the
	// private half our root cannot match, so a missing key is fatal rather
	// than a silent downgrade to the 3-DH derivation.
	var opkPriv *domain.X25519Private
	if pm.OneTimePreKeyID != "" {
		priv, _, ok, err := p.prekeys.ConsumeOneTimePreKey(pm.OneTimePreKeyID)
		if err != nil {
			return domain.Conversation{}, err
		}
		if !ok {
			return domain.Conversation{}, fmt.Errorf(
				"one-time pre-key %q already consumed or unknown", pm.OneTimePreKeyID)
		}
		opkPriv = &priv
	}

	root, err := x3dh.ResponderRoot(p.identity, spkPriv, opkPriv, pm)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("x3dh responder root: %w", err)
	}

	var senderRatchetPub domain.X25519Public
	copy(senderRatchetPub[:], wk.Header.DiffieHellmanPublicKey)

	st, err := ratchet.InitAsResponder(root, p.identity.XPriv, senderRatchetPub)
	memzero.Zero(root)
	if err != nil {
		return domain.Conversation{}, err
	}

	key := domain.ConversationKey(env.From, env.FromDevice)
	if err := p.sessions.SavePeerSession(key, domain.PeerSession{
		Peer:            env.From,
		DeviceID:        env.FromDevice,
		PeerIdentityKey: pm.InitiatorIdentityKey,
		SignedPreKeyID:  pm.SignedPreKeyID,
		OneTimePreKeyID: pm.OneTimePreKeyID,
		CreatedUTC:      time.Now().Unix(),
	}); err != nil {
		return domain.Conversation{}, err
	}
	if err := p.SetTrust(env.From, env.FromDevice, pm.InitiatorIdentityKey, domain.Trusted); err != nil {
		return domain.Conversation{}, err
	}

	return domain.Conversation{Peer: key, State: st}, nil
}

// SetTrust records a trust decision for one device of a peer.
func (p *Provider) SetTrust(
	peer domain.Address,
	device domain.DeviceID,
	identityKey domain.X25519Public,
	level domain.TrustLevel,
) error {
	return p.trust.RecordTrust(domain.TrustRecord{
		Peer:        peer,
		DeviceID:    device,
		IdentityKey: identityKey,
		Level:       level,
		DecidedUTC:  time.Now().Unix(),
	})
}

func excluded(list []domain.DeviceID, dev domain.DeviceID) bool {
	for _, d := range list {
		if d == dev {
			return true
		}
	}
	return false
}

// Compile-time assertions that Provider implements the domain contracts.
var (
	_ domain.Encryptor = (*Provider)(nil)
	_ domain.Decryptor = (*Provider)(nil)
)

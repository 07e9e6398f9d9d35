package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"cipherpost/internal/domain"
	"cipherpost/internal/session"
)

// stubRelay records sent envelopes and can fail sends on demand.
type stubRelay struct {
	sent    []domain.Envelope
	sendErr error
}

func (s *stubRelay) PublishDeviceBundle(context.Context, domain.DeviceBundle) error { return nil }
func (s *stubRelay) FetchDeviceList(context.Context, domain.Address) ([]domain.DeviceID, error) {
	return nil, nil
}
func (s *stubRelay) FetchDeviceBundle(
	context.Context, domain.Address, domain.DeviceID,
) (domain.DeviceBundle, error) {
	return domain.DeviceBundle{}, domain.ErrBundleNotFound
}
func (s *stubRelay) SendEnvelope(_ context.Context, env domain.Envelope) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, env)
	return nil
}
func (s *stubRelay) FetchEnvelopes(context.Context, domain.Address, int) ([]domain.Envelope, error) {
	return nil, nil
}
func (s *stubRelay) AckEnvelopes(context.Context, domain.Address, int) error { return nil }
func (s *stubRelay) AnnouncePresence(context.Context, domain.Address) error  { return nil }
func (s *stubRelay) FetchRoster(context.Context, domain.Address) ([]domain.Address, error) {
	return []domain.Address{"bob@relay"}, nil
}

func TestClient_SendEnvelopeStampsSender(t *testing.T) {
	rc := &stubRelay{}
	c := session.New("alice@relay", 7, rc, nil)

	require.NoError(t, c.SendEnvelope(context.Background(), domain.Envelope{
		ID: "e-1", To: "bob@relay", Kind: domain.KindChat,
	}))
	require.Len(t, rc.sent, 1)
	require.Equal(t, domain.Address("alice@relay"), rc.sent[0].From)
	require.Equal(t, domain.DeviceID(7), rc.sent[0].FromDevice)
	require.NotZero(t, rc.sent[0].Timestamp)
}

func TestClient_SendPlainSwallowsFailures(t *testing.T) {
	rc := &stubRelay{sendErr: errors.New("relay down")}
	c := session.New("alice@relay", 7, rc, nil)

	// Must not panic or surface the error; advisories are best-effort.
	c.SendPlain(context.Background(), "bob@relay", "heads up")
	require.Empty(t, rc.sent)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := session.New("alice@relay", 7, &stubRelay{}, nil)

	require.NoError(t, c.Open(context.Background()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

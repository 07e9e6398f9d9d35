package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cipherpost/internal/domain"
)

// Client is a live relay session for one local device.
type Client struct {
	me     domain.Address
	device domain.DeviceID
	relay  domain.RelayClient
	log    *slog.Logger

	closeOnce sync.Once
}

// New returns an unopened session for the local address and device.
func New(
	me domain.Address,
	device domain.DeviceID,
	relay domain.RelayClient,
	log *slog.Logger,
) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{me: me, device: device, relay: relay, log: log}
}

// Open announces presence and primes the roster.
func (c *Client) Open(ctx context.Context) error {
	if err := c.relay.AnnouncePresence(ctx, c.me); err != nil {
		return err
	}
	roster, err := c.relay.FetchRoster(ctx, c.me)
	if err != nil {
		return err
	}
	c.log.Debug("session opened", "address", c.me, "device", c.device, "roster", len(roster))
	return nil
}

// SendEnvelope dispatches an envelope through the relay, stamping the
// sender fields and timestamp.
func (c *Client) SendEnvelope(ctx context.Context, envelope domain.Envelope) error {
	envelope.From = c.me
	envelope.FromDevice = c.device
	if envelope.Timestamp == 0 {
		envelope.Timestamp = time.Now().Unix()
	}
	return c.relay.SendEnvelope(ctx, envelope)
}

// SendPlain sends a plaintext advisory notice to a recipient. It is
// fire-and-forget: failures are logged and swallowed.
func (c *Client) SendPlain(ctx context.Context, to domain.Address, text string) {
	env := domain.Envelope{
		ID:         uuid.NewString(),
		From:       c.me,
		FromDevice: c.device,
		To:         to,
		Kind:       domain.KindPlain,
		Body:       text,
		Timestamp:  time.Now().Unix(),
	}
	if err := c.relay.SendEnvelope(ctx, env); err != nil {
		c.log.Debug("plain advisory dropped", "to", to, "err", err)
	}
}

// Roster returns the addresses known to the relay.
func (c *Client) Roster(ctx context.Context) ([]domain.Address, error) {
	return c.relay.FetchRoster(ctx, c.me)
}

// Close releases the session. Safe to call from multiple exit paths; only
// the first call does work. The relay holds no per-session server state, so
// there is nothing that can fail here.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.log.Debug("session closed", "address", c.me)
	})
	return nil
}

// Compile-time assertion that Client implements domain.Session.
var _ domain.Session = (*Client)(nil)

package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cipherpost/internal/domain"
	"cipherpost/internal/omemo"
)

// Service receives messages over the relay.
//
// Envelopes are processed in order. We track how many envelopes were
// processed successfully and ack only that count, so a mid-stream decrypt
// error never acknowledges messages we did not handle.
type Service struct {
	me        domain.Address
	relay     domain.RelayClient
	decryptor domain.Decryptor
	log       *slog.Logger
}

// New constructs a message service for the local address.
func New(
	me domain.Address,
	relay domain.RelayClient,
	decryptor domain.Decryptor,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{me: me, relay: relay, decryptor: decryptor, log: log}
}

// ReceiveMessages fetches up to limit pending envelopes and decrypts them.
//
// Envelopes wrapped for other devices of this address are skipped but still
// acknowledged; they were never meant for us and will not become readable
// later. Plaintext advisories are returned as-is.
func (s *Service) ReceiveMessages(
	ctx context.Context,
	limit int,
) ([]domain.DecryptedMessage, error) {
	envs, err := s.relay.FetchEnvelopes(ctx, s.me, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DecryptedMessage, 0, len(envs))
	processed := 0

	for i, env := range envs {
		switch env.Kind {
		case domain.KindPlain:
			out = append(out, domain.DecryptedMessage{
				From:       env.From,
				FromDevice: env.FromDevice,
				To:         env.To,
				Plaintext:  []byte(env.Body),
				Timestamp:  env.Timestamp,
			})
		default:
			msg, err := s.decryptor.Decrypt(env)
			if errors.Is(err, omemo.ErrNotForThisDevice) {
				s.log.Debug("envelope for another device", "id", env.ID, "from", env.From)
				processed = i + 1
				continue
			}
			if err != nil {
				// Leave this envelope and everything after it queued.
				if ackErr := s.ack(ctx, processed); ackErr != nil {
					return out, errors.Join(err, ackErr)
				}
				return out, fmt.Errorf("decrypt envelope %s: %w", env.ID, err)
			}
			out = append(out, msg)
		}
		processed = i + 1
	}

	if err := s.ack(ctx, processed); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Service) ack(ctx context.Context, count int) error {
	if count == 0 {
		return nil
	}
	if err := s.relay.AckEnvelopes(ctx, s.me, count); err != nil {
		return fmt.Errorf("ack %d envelopes: %w", count, err)
	}
	return nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)

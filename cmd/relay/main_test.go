package main

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"cipherpost/internal/domain"
	"cipherpost/internal/relay"
)

func TestRelay_HandsOutOneTimePreKeysOncePerFetch(t *testing.T) {
	srv := httptest.NewServer(newMux(newMemoryRelay(slog.Default())))
	defer srv.Close()

	ctx := context.Background()
	client := relay.NewHTTP(srv.URL, srv.Client())

	bundle := domain.DeviceBundle{
		Address:     "bob@relay",
		DeviceID:    7,
		IdentityKey: domain.X25519Public{1},
		OneTimePreKeys: []domain.OneTimePreKeyPublic{
			{ID: "opk-a", Pub: domain.X25519Public{2}},
			{ID: "opk-b", Pub: domain.X25519Public{3}},
		},
	}
	require.NoError(t, client.PublishDeviceBundle(ctx, bundle))

	// Each fetch returns exactly one key and retires it.
	first, err := client.FetchDeviceBundle(ctx, "bob@relay", 7)
	require.NoError(t, err)
	require.Len(t, first.OneTimePreKeys, 1)
	require.Equal(t, domain.OneTimePreKeyID("opk-a"), first.OneTimePreKeys[0].ID)

	second, err := client.FetchDeviceBundle(ctx, "bob@relay", 7)
	require.NoError(t, err)
	require.Len(t, second.OneTimePreKeys, 1)
	require.Equal(t, domain.OneTimePreKeyID("opk-b"), second.OneTimePreKeys[0].ID)

	// Exhausted: the bundle is still served, just without a one-time key.
	third, err := client.FetchDeviceBundle(ctx, "bob@relay", 7)
	require.NoError(t, err)
	require.Empty(t, third.OneTimePreKeys)
	require.Equal(t, bundle.IdentityKey, third.IdentityKey)
}

func TestRelay_QueueAckDropsProcessedPrefix(t *testing.T) {
	srv := httptest.NewServer(newMux(newMemoryRelay(slog.Default())))
	defer srv.Close()

	ctx := context.Background()
	client := relay.NewHTTP(srv.URL, srv.Client())

	for _, id := range []string{"e-1", "e-2", "e-3"} {
		require.NoError(t, client.SendEnvelope(ctx, domain.Envelope{
			ID: id, To: "bob@relay", Kind: domain.KindChat,
		}))
	}

	require.NoError(t, client.AckEnvelopes(ctx, "bob@relay", 2))

	left, err := client.FetchEnvelopes(ctx, "bob@relay", 0)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, "e-3", left[0].ID)
}

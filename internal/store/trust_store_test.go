package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cipherpost/internal/domain"
	"cipherpost/internal/store"
)

func TestTrustStore_RecordLookupList(t *testing.T) {
	ts := store.NewTrustFileStore(t.TempDir())

	_, ok, err := ts.LookupTrust("bob@relay", 7)
	require.NoError(t, err)
	require.False(t, ok, "fresh store should have no records")

	rec := domain.TrustRecord{
		Peer:        "bob@relay",
		DeviceID:    7,
		IdentityKey: domain.X25519Public{0xaa},
		Level:       domain.Trusted,
		DecidedUTC:  1700000000,
	}
	require.NoError(t, ts.RecordTrust(rec))

	got, ok, err := ts.LookupTrust("bob@relay", 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)

	// Replacing the decision keeps a single record per device.
	rec.Level = domain.Distrusted
	require.NoError(t, ts.RecordTrust(rec))

	all, err := ts.ListTrust()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, domain.Distrusted, all[0].Level)
}

func TestTrustStore_ListOrdering(t *testing.T) {
	ts := store.NewTrustFileStore(t.TempDir())

	for _, rec := range []domain.TrustRecord{
		{Peer: "carol@relay", DeviceID: 2, Level: domain.Trusted},
		{Peer: "bob@relay", DeviceID: 9, Level: domain.Trusted},
		{Peer: "bob@relay", DeviceID: 1, Level: domain.Distrusted},
	} {
		require.NoError(t, ts.RecordTrust(rec))
	}

	all, err := ts.ListTrust()
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, domain.Address("bob@relay"), all[0].Peer)
	require.Equal(t, domain.DeviceID(1), all[0].DeviceID)
	require.Equal(t, domain.DeviceID(9), all[1].DeviceID)
	require.Equal(t, domain.Address("carol@relay"), all[2].Peer)
}

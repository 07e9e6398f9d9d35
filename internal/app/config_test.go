package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cipherpost/internal/app"
	"cipherpost/internal/domain"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, app.DefaultRelayURL, cfg.RelayURL)
	require.Equal(t, "tofu", cfg.TrustPolicy)
	require.Empty(t, cfg.Address)
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := app.Config{
		Address:     domain.Address("alice@relay.example"),
		RelayURL:    "https://relay.example",
		TrustPolicy: "deny",
	}
	require.NoError(t, app.SaveConfig(dir, want))

	got, err := app.LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, app.ConfigFileName)
	require.NoError(t, os.WriteFile(path,
		[]byte("address = \"a@b\"\nrelay = \"oops\"\n"), 0o600))

	_, err := app.LoadConfig(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown key")
}

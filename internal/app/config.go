package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"cipherpost/internal/domain"
)

// ConfigFileName is the per-profile configuration file inside the data dir.
const ConfigFileName = "config.toml"

// DefaultRelayURL is used when neither the config file nor the --relay flag
// names a relay.
const DefaultRelayURL = "http://localhost:8080"

// Config is the persisted per-profile configuration. Flags override file
// values field by field.
type Config struct {
	Address     domain.Address `toml:"address"`
	RelayURL    string         `toml:"relay_url"`
	TrustPolicy string         `toml:"trust_policy"`
}

// LoadConfig reads config.toml from the data directory. A missing file is
// not an error; defaults apply.
func LoadConfig(dataDir string) (Config, error) {
	cfg := Config{RelayURL: DefaultRelayURL, TrustPolicy: "tofu"}

	path := filepath.Join(dataDir, ConfigFileName)
	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %q in %s", undecoded[0], path)
	}
	if cfg.RelayURL == "" {
		cfg.RelayURL = DefaultRelayURL
	}
	if cfg.TrustPolicy == "" {
		cfg.TrustPolicy = "tofu"
	}
	return cfg, nil
}

// SaveConfig writes config.toml into the data directory.
func SaveConfig(dataDir string, cfg Config) error {
	path := filepath.Join(dataDir, ConfigFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

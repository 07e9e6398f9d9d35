package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cipherpost/internal/app"
	"cipherpost/internal/domain"
)

var (
	dataDir    string
	passphrase string
	relayURL   string
	quiet      bool
	debug      bool

	appCtx *app.App
	logger *slog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:           "cipherpost",
		Short:         "One-shot end-to-end encrypted message delivery",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dataDir == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				dataDir = filepath.Join(dir, ".cipherpost")
			}
			if err := os.MkdirAll(dataDir, 0o700); err != nil {
				return err
			}

			logger = newLogger(quiet, debug)

			cfg, err := app.LoadConfig(dataDir)
			if err != nil {
				return err
			}
			if relayURL != "" {
				cfg.RelayURL = relayURL
			}

			appCtx = app.New(dataDir, cfg, logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default ~/.cipherpost)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "",
		"passphrase protecting the identity keys")
	root.PersistentFlags().StringVar(&relayURL, "relay", "",
		"relay base URL (overrides config.toml)")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"log errors only")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"log debug detail")
	root.MarkFlagsMutuallyExclusive("quiet", "debug")

	root.AddCommand(
		initCmd(), fingerprintCmd(), registerCmd(),
		sendCmd(), recvCmd(), trustCmd(),
	)
	return root.Execute()
}

func newLogger(quiet, debug bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}

func requireAddress() (domain.Address, error) {
	if appCtx.Config.Address == "" {
		return "", fmt.Errorf("no address configured. run init first")
	}
	return appCtx.Config.Address, nil
}

package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cipherpost/internal/app"
	"cipherpost/internal/domain"
)

func initCmd() *cobra.Command {
	var trustPolicy string

	cmd := &cobra.Command{
		Use:   "init <address>",
		Short: "Generate identity keys and store them securely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}

			_, fp, err := appCtx.Identities.GenerateIdentity(passphrase)
			if err != nil {
				return err
			}

			cfg := appCtx.Config
			cfg.Address = domain.Address(args[0])
			if trustPolicy != "" {
				cfg.TrustPolicy = trustPolicy
			}
			if err := app.SaveConfig(dataDir, cfg); err != nil {
				return err
			}

			color.Green("Identity created for %s.", cfg.Address)
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}

	cmd.Flags().StringVar(&trustPolicy, "trust-policy", "",
		"trust policy for new devices: tofu or deny (default tofu)")
	return cmd
}

package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var opkCount int

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Publish your device bundle to the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			address, err := requireAddress()
			if err != nil {
				return err
			}

			// A fresh signed pre-key and a batch of one-time pre-keys.
			if _, _, err := appCtx.PreKeys.GenerateAndStorePreKeys(
				passphrase, opkCount,
			); err != nil {
				return err
			}

			bundle, err := appCtx.PreKeys.LoadDeviceBundle(passphrase, address)
			if err != nil {
				return err
			}

			if err := appCtx.Relay.PublishDeviceBundle(
				cmd.Context(), bundle,
			); err != nil {
				return err
			}

			color.Green("Registered device %d of %s with relay.",
				bundle.DeviceID, address)
			return nil
		},
	}

	cmd.Flags().IntVar(&opkCount, "opk-count", 10,
		"number of one-time pre-keys to publish")
	return cmd
}

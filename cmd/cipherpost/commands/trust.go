package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cipherpost/internal/crypto"
	"cipherpost/internal/domain"
)

func trustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Inspect and record trust decisions",
	}
	cmd.AddCommand(trustListCmd(), trustSetCmd())
	return cmd
}

func trustListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded trust decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := appCtx.TrustStore().ListTrust()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No trust decisions recorded.")
				return nil
			}
			for _, r := range records {
				fp := crypto.Fingerprint(r.IdentityKey.Slice())
				fmt.Printf("%-30s device %-6d %-10s %s\n",
					r.Peer, r.DeviceID, r.Level, fp)
			}
			return nil
		},
	}
}

// trust set pins the decision to the key the device currently publishes, so
// a later key change lands back in the undecided state.
func trustSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <peer> <device> <trusted|distrusted>",
		Short: "Record a trust decision for a peer device",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.Address(args[0])

			deviceNum, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid device id %q: %w", args[1], err)
			}
			device := domain.DeviceID(deviceNum)

			var level domain.TrustLevel
			switch args[2] {
			case "trusted":
				level = domain.Trusted
			case "distrusted":
				level = domain.Distrusted
			default:
				return fmt.Errorf("invalid level %q (want trusted or distrusted)", args[2])
			}

			bundle, err := appCtx.Relay.FetchDeviceBundle(cmd.Context(), peer, device)
			if err != nil {
				return fmt.Errorf("fetching bundle for device %d of %s: %w",
					device, peer, err)
			}

			if err := appCtx.TrustStore().RecordTrust(domain.TrustRecord{
				Peer:        peer,
				DeviceID:    device,
				IdentityKey: bundle.IdentityKey,
				Level:       level,
				DecidedUTC:  time.Now().Unix(),
			}); err != nil {
				return err
			}

			fp := crypto.Fingerprint(bundle.IdentityKey.Slice())
			color.Green("Recorded %s for device %d of %s (key %s).",
				level, device, peer, fp)
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// recv fetches and decrypts queued messages for the configured address.
func recvCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch and decrypt your queued messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if _, err := requireAddress(); err != nil {
				return err
			}

			rt, err := appCtx.Unlock(passphrase)
			if err != nil {
				return err
			}

			msgs, err := rt.Messages.ReceiveMessages(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Println("No new messages.")
				return nil
			}
			for _, m := range msgs {
				stamp := time.Unix(m.Timestamp, 0).Format(time.RFC3339)
				color.Cyan("[%s] %s (device %d):", stamp, m.From, m.FromDevice)
				fmt.Printf("  %s\n", string(m.Plaintext))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0,
		"maximum messages to fetch (0 means all)")
	return cmd
}

package commands

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cipherpost/internal/domain"
	"cipherpost/internal/services/send"
)

// send encrypts a message for every trusted device of the recipient and
// delivers it in one shot. Recipient and message fall back to interactive
// prompts when the flags are absent.
func sendCmd() *cobra.Command {
	var (
		to      string
		message string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Encrypt and send a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if _, err := requireAddress(); err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			if to == "" {
				if err := prompt(cmd, reader, "Send To: ", &to); err != nil {
					return err
				}
			}
			if message == "" {
				if err := prompt(cmd, reader, "Message: ", &message); err != nil {
					return err
				}
			}

			rt, err := appCtx.Unlock(passphrase)
			if err != nil {
				return err
			}

			spin := newSpinner("Encrypting and sending...")
			spin.Start()
			result, err := rt.Workflow.Send(
				cmd.Context(),
				appCtx.Session(rt),
				domain.Address(to),
				message,
			)
			spin.Stop()
			if err != nil {
				return err
			}

			switch result.Status {
			case send.StatusSent:
				color.Green("Message sent to %s.", to)
			default:
				color.Yellow("Message not delivered (%s).", result.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "recipient address")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message text")
	return cmd
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string, out *string) error {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	*out = strings.TrimSpace(line)
	if *out == "" {
		return fmt.Errorf("empty input")
	}
	return nil
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	return s
}

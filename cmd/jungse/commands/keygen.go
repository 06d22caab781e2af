package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gojungse/internal/auth"
	"github.com/TimurManjosov/gojungse/internal/webhook"
)

var keygenWebhook bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an admin key or webhook secret",
	Long: `Generate a random admin key together with the bcrypt hash to put in
ADMIN_API_KEY_HASH, or with --webhook a signing secret for WEBHOOK_SECRET.

Examples:
  jungse keygen
  jungse keygen --webhook`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if keygenWebhook {
			secret, err := webhook.NewSecret()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "WEBHOOK_SECRET=%s\n", secret)
			return nil
		}

		key, err := auth.GenerateAPIKey()
		if err != nil {
			return err
		}
		hash, err := auth.HashAPIKey(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "key:  %s\n", key)
		fmt.Fprintf(out, "ADMIN_API_KEY_HASH=%s\n", hash)
		fmt.Fprintln(cmd.ErrOrStderr(), "The key is shown once. Store it with: jungse config set <env>.api_key <key>")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().BoolVar(&keygenWebhook, "webhook", false, "Generate a webhook signing secret instead")
}

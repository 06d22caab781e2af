package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gojungse/internal/engine"
)

var (
	translateRules  string
	translateDebug  bool
	translateRemote bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Rewrite text with a rule table",
	Long: `Rewrite text with a local rule table, or with the table of a server when
--remote is given. Without arguments the text is read from stdin.

With --debug every rule that changed the text is printed to stderr in the
order it was applied.

Examples:
  jungse translate --rules rules.csv "하늘을 나는 새"
  jungse translate --rules rules.csv --debug < input.txt
  jungse translate --remote --env prod "하늘"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, fromArgs, err := inputText(cmd, args)
		if err != nil {
			return err
		}

		var (
			output  string
			applied []engine.Application
		)
		if translateRemote {
			c, err := newClient()
			if err != nil {
				return err
			}
			res, err := c.Translate(cmd.Context(), text, translateDebug)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}
			output, applied = res.Output, res.Applied
		} else {
			eng, _, err := loadLocal(cmd, translateRules)
			if err != nil {
				return err
			}
			res := eng.Translate(text, translateDebug)
			output, applied = res.Output, res.Applied
		}

		if translateDebug {
			for _, a := range applied {
				fmt.Fprintln(cmd.ErrOrStderr(), a.String())
			}
		}
		if fromArgs {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
		} else {
			_, err = fmt.Fprint(cmd.OutOrStdout(), output)
		}
		return err
	},
}

func inputText(cmd *cobra.Command, args []string) (string, bool, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), true, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", false, fmt.Errorf("read stdin: %w", err)
	}
	return string(b), false, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&translateRules, "rules", "", "Path to the CSV rule table")
	translateCmd.Flags().BoolVar(&translateDebug, "debug", false, "Print applied rules to stderr")
	translateCmd.Flags().BoolVar(&translateRemote, "remote", false, "Translate on the configured server")
}

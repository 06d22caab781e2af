package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gojungse/internal/cli"
	"github.com/TimurManjosov/gojungse/internal/client"
	"github.com/TimurManjosov/gojungse/internal/rules"
)

var (
	rulesPath  string
	lintStrict bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage rule tables",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in application order",
	Long: `List the rules of a local table (--rules) or of the server, in the order
they are applied: priority first, then longer patterns.

Examples:
  jungse rules list --rules rules.csv
  jungse rules list --env prod --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var rs []rules.Rule
		if rulesPath != "" {
			eng, _, err := loadLocal(cmd, rulesPath)
			if err != nil {
				return err
			}
			rs = eng.Table().Rules
		} else {
			c, err := newClient()
			if err != nil {
				return err
			}
			tbl, err := c.Rules(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}
			rs = tbl.Rules
		}
		return cli.PrintRules(cmd.OutOrStdout(), rs, cli.OutputFormat(format))
	},
}

var rulesLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report rows that fall back to default behaviour",
	Long: `Check a local rule table for unknown modes, non-numeric priorities, unknown
condition names, invalid patterns and ignored conditions. Such rows still
load; lint shows where a fallback applies.

Examples:
  jungse rules lint --rules rules.csv
  jungse rules lint --rules rules.csv --strict --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, res, err := loadLocal(cmd, rulesPath)
		if err != nil {
			return err
		}
		if err := cli.PrintWarnings(cmd.OutOrStdout(), res.Warnings, cli.OutputFormat(format)); err != nil {
			return err
		}
		if cli.OutputFormat(format) == cli.FormatTable {
			fmt.Fprintf(cmd.OutOrStdout(), "%d rules, %d warnings\n", res.RuleCount, len(res.Warnings))
		}
		if lintStrict && len(res.Warnings) > 0 {
			return fmt.Errorf("lint found %d warnings", len(res.Warnings))
		}
		return nil
	},
}

var rulesPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Replace the server's rule table",
	Long: `Upload a CSV rule table to the server. Requires the admin API key.

Example:
  jungse rules push rules.csv --env prod`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read rule table: %w", err)
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.PushRules(cmd.Context(), string(raw))
		if err != nil {
			return fmt.Errorf("failed to push rules: %w", err)
		}
		printLoad(cmd, "pushed", res)
		return nil
	},
}

var rulesReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Make the server re-read its rule source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.Reload(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to reload rules: %w", err)
		}
		printLoad(cmd, "reloaded", res)
		return nil
	},
}

func printLoad(cmd *cobra.Command, verb string, res *client.LoadResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d rules (etag %s)\n", verb, res.RuleCount, res.ETag)
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w.Message)
	}
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesLintCmd, rulesPushCmd, rulesReloadCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to a local CSV rule table")
	rulesLintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Exit with an error when there are warnings")
}

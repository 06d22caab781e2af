package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gojungse/internal/cli"
	"github.com/TimurManjosov/gojungse/internal/client"
	"github.com/TimurManjosov/gojungse/internal/engine"
	"github.com/TimurManjosov/gojungse/internal/logging"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jungse",
	Short: "Rewrite modern Korean text into archaic orthography",
	Long: `jungse rewrites modern Korean text into an older orthographic form using a
CSV rule table, either locally or against a running jungse server.

Examples:
  jungse translate --rules rules.csv "하늘을 나는 새"
  echo "하다" | jungse translate --rules rules.csv --debug
  jungse rules lint --rules rules.csv --strict
  jungse rules push rules.csv --env prod
  jungse translate --remote "하늘"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the jungse server")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Named server from ~/.jungse/config.yaml")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging to stderr")
}

func newLogger(w io.Writer) zerolog.Logger {
	level := "error"
	if verbose {
		level = "debug"
	}
	return logging.New(level, "console", w)
}

// loadLocal builds an engine over the rule table at path.
func loadLocal(cmd *cobra.Command, path string) (*engine.Engine, engine.LoadResult, error) {
	if path == "" {
		return nil, engine.LoadResult{}, fmt.Errorf("--rules is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.LoadResult{}, fmt.Errorf("read rule table: %w", err)
	}
	eng := engine.New(nil, newLogger(cmd.ErrOrStderr()))
	res, err := eng.LoadRuleTableFrom(string(raw), path)
	if err != nil {
		return nil, engine.LoadResult{}, fmt.Errorf("load %s: %w", path, err)
	}
	return eng, res, nil
}

func newClient() (*client.Client, error) {
	envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return client.NewClient(envCfg.BaseURL, envCfg.APIKey), nil
}

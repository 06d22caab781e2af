package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gojungse/internal/cli"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage the jungse CLI configuration file.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long: `Create a default configuration file at ~/.jungse/config.yaml

Example:
  jungse config init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cli.InitConfig(configForce)
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration file created at: %s\n", path)
		fmt.Fprintln(out, "\nEdit the file to set your server URLs and admin keys.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Default Environment: %s\n\n", cfg.DefaultEnv)
		fmt.Fprintln(out, "Environments:")
		for name, envCfg := range cfg.Environments {
			fmt.Fprintf(out, "  %s:\n", name)
			fmt.Fprintf(out, "    base_url: %s\n", envCfg.BaseURL)
			maskedKey := "***"
			if len(envCfg.APIKey) > 4 {
				maskedKey = envCfg.APIKey[:4] + "***"
			}
			fmt.Fprintf(out, "    api_key: %s\n", maskedKey)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <env.key> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value.

Examples:
  jungse config set local.base_url http://localhost:8080
  jungse config set prod.api_key my-secret-key`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		envName, key, ok := strings.Cut(args[0], ".")
		if !ok {
			return fmt.Errorf("invalid key format, expected 'env.key' (e.g., 'local.base_url')")
		}

		if cfg.Environments == nil {
			cfg.Environments = make(map[string]cli.EnvConfig)
		}
		envCfg := cfg.Environments[envName]

		switch key {
		case "base_url":
			envCfg.BaseURL = args[1]
		case "api_key":
			envCfg.APIKey = args[1]
		default:
			return fmt.Errorf("unknown key '%s', valid keys: base_url, api_key", key)
		}
		cfg.Environments[envName] = envCfg

		if err := cli.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully set %s.%s\n", envName, key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configListCmd, configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
}

// Package cli holds configuration and output helpers for the jungse command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration
type Config struct {
	DefaultEnv   string               `yaml:"default_env"`
	Environments map[string]EnvConfig `yaml:"environments"`
}

// EnvConfig represents configuration for one server
type EnvConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".jungse", "config.yaml"), nil
}

// LoadConfig loads the configuration file. A missing file yields an empty
// config.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{
				DefaultEnv:   "local",
				Environments: make(map[string]EnvConfig),
			}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetEnvConfig resolves the server to talk to.
// Priority: command flags > environment variables > config file.
// Only the base URL is required; admin commands check the key themselves.
func GetEnvConfig(envName, baseURLFlag, apiKeyFlag string) (*EnvConfig, string, error) {
	envBaseURL := os.Getenv("JUNGSE_BASE_URL")
	envAPIKey := os.Getenv("JUNGSE_API_KEY")

	pick := func(flag, env, file string) string {
		switch {
		case flag != "":
			return flag
		case env != "":
			return env
		default:
			return file
		}
	}

	if baseURLFlag != "" || envBaseURL != "" {
		return &EnvConfig{
			BaseURL: pick(baseURLFlag, envBaseURL, ""),
			APIKey:  pick(apiKeyFlag, envAPIKey, ""),
		}, envName, nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, "", err
	}
	if envName == "" {
		envName = cfg.DefaultEnv
	}

	envCfg, ok := cfg.Environments[envName]
	if !ok {
		return nil, "", fmt.Errorf("environment '%s' not found in config (run 'jungse config init' or pass --base-url)", envName)
	}
	envCfg.APIKey = pick(apiKeyFlag, envAPIKey, envCfg.APIKey)

	if envCfg.BaseURL == "" {
		return nil, "", fmt.Errorf("base_url must be configured for environment '%s'", envName)
	}
	return &envCfg, envName, nil
}

// InitConfig writes a default config file. An existing file is kept unless
// force is set.
func InitConfig(force bool) (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	cfg := &Config{
		DefaultEnv: "local",
		Environments: map[string]EnvConfig{
			"local": {
				BaseURL: "http://localhost:8080",
				APIKey:  "admin-123",
			},
			"prod": {
				BaseURL: "https://jungse.example.com",
			},
		},
	}
	return path, SaveConfig(cfg)
}

package config

import "time"

// Config is the CLI configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds the VaultSens connection details.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Key     string        `mapstructure:"key"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 = no client-side timeout
}

// HasCredentials reports whether both the key and the secret are set.
func (a APIConfig) HasCredentials() bool {
	return a.Key != "" && a.Secret != ""
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// Package config loads the vaultsens CLI configuration from defaults, an
// optional YAML file, VAULTSENS_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "VAULTSENS"

// DefaultBaseURL is used when no base URL is configured anywhere.
const DefaultBaseURL = "http://localhost:3000"

// FlagKeys maps config keys to the CLI flags that override them.
var FlagKeys = map[string]string{
	"api.base_url":   "base-url",
	"api.key":        "api-key",
	"api.secret":     "api-secret",
	"api.timeout":    "timeout",
	"logging.level":  "log-level",
	"logging.format": "log-format",
}

// Load reads the configuration. configPath, when non-empty, must name an
// existing file; otherwise config.yaml is looked up in the current
// directory, ~/.vaultsens and /etc/vaultsens, and its absence is not an
// error. flags may be nil; only flags the user actually set take effect.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short aliases shared with the integration tests' .env.
	_ = v.BindEnv("api.base_url", EnvPrefix+"_BASE_URL", EnvPrefix+"_API_BASE_URL")
	_ = v.BindEnv("api.key", EnvPrefix+"_API_KEY")
	_ = v.BindEnv("api.secret", EnvPrefix+"_API_SECRET")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".vaultsens"))
		}
		v.AddConfigPath("/etc/vaultsens/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %q: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.key", "")
	v.SetDefault("api.secret", "")
	v.SetDefault("api.timeout", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

func normalize(cfg *Config) {
	cfg.API.BaseURL = strings.TrimSpace(cfg.API.BaseURL)
	cfg.API.Key = strings.TrimSpace(cfg.API.Key)
	cfg.API.Secret = strings.TrimSpace(cfg.API.Secret)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL: %q", cfg.API.BaseURL)
	}

	// Missing credentials are reported by the client on first use; half a
	// pair is almost certainly a typo.
	if (cfg.API.Key == "") != (cfg.API.Secret == "") {
		return fmt.Errorf("api.key and api.secret must be set together")
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative: %s", cfg.API.Timeout)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// Package config loads hn-fetch configuration from defaults, an optional
// YAML file, HN_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/hn-fetch/pkg/client"
	"github.com/Sternrassler/hn-fetch/pkg/expand"
	"github.com/spf13/viper"
)

const (
	// DefaultItemURL is the Hacker News item address template.
	DefaultItemURL = expand.DefaultItemURL

	// DefaultUserURL is the Hacker News user profile address template.
	DefaultUserURL = "https://hacker-news.firebaseio.com/v0/user/%s.json"

	// EnvPrefix prefixes every environment override, e.g. HN_TIMEOUT.
	EnvPrefix = "HN"
)

// Config holds the application configuration.
type Config struct {
	ItemURL        string        `mapstructure:"item_url"`
	UserURL        string        `mapstructure:"user_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Log            LogConfig     `mapstructure:"log"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ItemURL:        DefaultItemURL,
		UserURL:        DefaultUserURL,
		Timeout:        client.DefaultTimeout,
		UserAgent:      client.DefaultUserAgent,
		MaxConcurrency: 0,
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load reads configuration into a Config. When path is empty, hn-fetch.yaml
// is searched in the working directory and $HOME/.hn-fetch; a missing file
// is not an error. Flags already bound to v take precedence over the file
// and the environment.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hn-fetch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".hn-fetch"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("item_url", d.ItemURL)
	v.SetDefault("user_url", d.UserURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("max_concurrency", d.MaxConcurrency)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if c.ItemURL == "" {
		return fmt.Errorf("item_url is required")
	}
	if c.UserURL == "" {
		return fmt.Errorf("user_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", c.Timeout)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0 (got %d)", c.MaxConcurrency)
	}
	return nil
}

// ClientConfig returns the fetcher settings.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		Timeout:   c.Timeout,
		UserAgent: c.UserAgent,
	}
}

// ExpandConfig returns the expander settings.
func (c *Config) ExpandConfig() expand.Config {
	return expand.Config{
		ItemURL:        c.ItemURL,
		MaxConcurrency: c.MaxConcurrency,
	}
}

// ItemAddress returns the address of item id.
func (c *Config) ItemAddress(id string) string {
	return client.FormatURL(c.ItemURL, id)
}

// UserAddress returns the profile address of username.
func (c *Config) UserAddress(username string) string {
	return client.FormatURL(c.UserURL, username)
}

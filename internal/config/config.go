// Package config loads notecrypt CLI settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds CLI settings. Flags given on the command line override the
// values read here.
type Config struct {
	// Dir is the host directory notes are stored under
	Dir string `env:"NOTECRYPT_DIR"`
	// LogLevel is a zerolog level name
	LogLevel string `env:"NOTECRYPT_LOG_LEVEL" envDefault:"warn"`
	// PassphraseFile, when set, supplies the passphrase instead of a prompt
	PassphraseFile string `env:"NOTECRYPT_PASSPHRASE_FILE"`
}

// Load reads the process environment
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads settings from vars instead of the process environment
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if cfg.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve default note directory: %w", err)
		}
		cfg.Dir = filepath.Join(home, ".notecrypt")
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("note directory cannot be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means warn.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

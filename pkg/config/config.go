// Package config loads the layershare configuration file.
//
// The file is TOML, read from $XDG_CONFIG_HOME/layershare/config.toml
// (~/.config/layershare/config.toml when XDG_CONFIG_HOME is unset) or from
// an explicit path:
//
//	provider    = "registry"
//	platform    = "linux/arm64"
//	formats     = ["svg", "txt"]
//	output_dir  = "diagrams"
//	color       = "darkseagreen"
//	cache_ttl   = "12h"
//	redis_addr  = "localhost:6379"
//	server_addr = ":8080"
//
// Every key is optional; [Default] supplies the values of missing keys.
// Command-line flags override file values.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/pipeline"
)

const appName = "layershare"

// DefaultServerAddr is the listen address of "layershare serve".
const DefaultServerAddr = ":8080"

// Config holds user settings.
type Config struct {
	Provider   string        `toml:"provider"`
	Platform   string        `toml:"platform"`
	Formats    []string      `toml:"formats"`
	OutputDir  string        `toml:"output_dir"`
	Color      string        `toml:"color"`
	CacheTTL   time.Duration `toml:"cache_ttl"`
	RedisAddr  string        `toml:"redis_addr"`
	ServerAddr string        `toml:"server_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:   pipeline.DefaultProvider,
		Formats:    slices.Clone(pipeline.DefaultFormats),
		OutputDir:  ".",
		CacheTTL:   history.DefaultTTL,
		ServerAddr: DefaultServerAddr,
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration at path over [Default]. With an empty path
// the default location is used, and a missing file there is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return Default(), nil
			}
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
	}
	return cfg, nil
}

// Validate checks provider, formats and TTL.
func (c Config) Validate() error {
	if !slices.Contains(history.Kinds, c.Provider) {
		return errors.New(errors.ErrCodeInvalidProvider,
			"invalid provider: %q (must be one of: %s)", c.Provider, strings.Join(history.Kinds, ", "))
	}
	if err := pipeline.ValidateFormats(c.Formats); err != nil {
		return err
	}
	if c.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache_ttl cannot be negative")
	}
	return nil
}

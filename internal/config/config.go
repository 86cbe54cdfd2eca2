// Package config loads the jsonstore command line configuration.
//
// Example configuration:
//
//	data_dir: ${HOME}/.local/share/simple
//	log_level: debug
//	app_name: simple
//	default_unit: ounces
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simplekit/jsonstore/internal/jsonstore"
	"github.com/simplekit/jsonstore/internal/prefs"
	"github.com/simplekit/jsonstore/internal/storepath"
)

// FileName is the configuration file name inside the user config directory.
const FileName = "config.yaml"

// Config is the CLI configuration.
type Config struct {
	// DataDir is where store files live. Empty means the per-user
	// configuration directory of AppName.
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of debug, info, warn or error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// AppName names the per-user directory. Defaults to jsonstore.
	AppName string `yaml:"app_name"`

	// DefaultUnit is the volume unit used when none is stored.
	// Defaults to milliliters.
	DefaultUnit prefs.VolumeUnit `yaml:"default_unit"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// DefaultPath returns the configuration file location for app.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, app, FileName), nil
}

// Load reads and parses a YAML configuration file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults and validates the
// result. ${VAR} and ${VAR:-default} are expanded in data_dir.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	dir, err := expandEnvVars(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data_dir: %w", err)
	}
	cfg.DataDir = dir
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AppName == "" {
		c.AppName = jsonstore.DefaultApp
	}
	if c.DefaultUnit == "" {
		c.DefaultUnit = prefs.Milliliters
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := storepath.ValidateName(c.AppName); err != nil {
		return fmt.Errorf("app_name: %w", err)
	}
	if !c.DefaultUnit.Valid() {
		return fmt.Errorf("default_unit must be one of milliliters, ounces; got %q", c.DefaultUnit)
	}
	return nil
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: invalid level %q", c.LogLevel)
	}
	return l, nil
}

// Resolver returns where store files live.
func (c *Config) Resolver() storepath.Resolver {
	if c.DataDir != "" {
		return storepath.Dir(c.DataDir)
	}
	return storepath.UserDir{App: c.AppName}
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
// An unset variable without default is an error.
func expandEnvVars(s string) (string, error) {
	var firstErr error
	out := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := envVarPattern.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(m[1]); ok {
			return v
		}
		if m[2] != "" {
			return m[3]
		}
		firstErr = fmt.Errorf("environment variable %q is not set", m[1])
		return match
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

/*
PURPOSE:
  Defines the configuration structure and loading logic for y2start.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - The command line grammar is fixed; nothing here may add options to it.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - The config file cannot be named on the command line (generic options are
    only -h/--help), so it is located through Y2START_CONFIG or a search list.
  - Environment variables override file values (Y2START_...).
  - Signal log locations and the postmortem helper are deliberately absent.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default file falls back to defaults; a missing explicit file
    is an error.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (plan as YAML, info logging, guard on).

USAGE:
  cfg, err := config.Load(os.Getenv(config.EnvFile))

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update DefaultConfig().

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvFile names an explicit config file.
	EnvFile = "Y2START_CONFIG"
	// EnvLogLevel overrides log_level.
	EnvLogLevel = "Y2START_LOG_LEVEL"
	// EnvPlanFormat overrides plan_format.
	EnvPlanFormat = "Y2START_PLAN_FORMAT"
	// EnvInstallSignals overrides install_signals.
	EnvInstallSignals = "Y2START_INSTALL_SIGNALS"
)

// Plan formats understood by internal/output.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// DefaultSearchPaths are tried in order when no explicit file is given.
var DefaultSearchPaths = []string{"y2start.yaml", "/etc/y2start.yaml"}

// Config represents the full configuration for y2start.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// PlanFormat selects how the launch plan is written to stdout.
	PlanFormat string `yaml:"plan_format"`
	// InstallSignals turns the signal guard on or off.
	InstallSignals bool `yaml:"install_signals"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "warn",
		PlanFormat:     FormatYAML,
		InstallSignals: true,
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultSearchPaths in order.
// If no file found, returns default config.
// Environment overrides are applied last in every case.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		for _, name := range DefaultSearchPaths {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				break
			}
		}
	}

	if path != "" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvPlanFormat); ok && v != "" {
		cfg.PlanFormat = v
	}
	if v, ok := lookup(EnvInstallSignals); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvInstallSignals, v, err)
		}
		cfg.InstallSignals = b
	}
	return nil
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	c.PlanFormat = strings.ToLower(strings.TrimSpace(c.PlanFormat))
	switch c.PlanFormat {
	case FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("unsupported plan_format %q (want %s or %s)", c.PlanFormat, FormatYAML, FormatJSON)
	}
	return nil
}

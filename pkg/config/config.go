// Package config provides configuration loading and management for opticalflake.
// It handles loading configuration and job descriptions from YAML files and
// provides default values.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"opticalflake/pkg/analysis"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumWorkers specifies how many measurements are recomputed concurrently
		NumWorkers int `yaml:"numWorkers"`

		// DefaultWidth is the averaging width used when a cut does not set one
		DefaultWidth int `yaml:"defaultWidth"`

		// BaselineTopK is how many of the largest contrast values feed the
		// baseline median
		BaselineTopK int `yaml:"baselineTopK"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Percent scales contrast fractions by 100 when printing
		Percent bool `yaml:"percent"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumWorkers = runtime.NumCPU()
	cfg.Processing.DefaultWidth = 10
	cfg.Processing.BaselineTopK = 3

	cfg.Output.Percent = false
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that the processing parameters are usable
func (c *Config) Validate() error {
	if c.Processing.NumWorkers < 1 {
		return errors.Errorf("numWorkers must be at least 1, got %d", c.Processing.NumWorkers)
	}
	if c.Processing.DefaultWidth < analysis.MinWidth || c.Processing.DefaultWidth > analysis.MaxWidth {
		return errors.Errorf("defaultWidth must be in [%d, %d], got %d",
			analysis.MinWidth, analysis.MaxWidth, c.Processing.DefaultWidth)
	}
	if c.Processing.BaselineTopK < 1 {
		return errors.Errorf("baselineTopK must be at least 1, got %d", c.Processing.BaselineTopK)
	}
	return nil
}

// SessionParams converts the processing section into analysis parameters
func (c *Config) SessionParams() *analysis.Params {
	return &analysis.Params{
		NumWorkers:   c.Processing.NumWorkers,
		DefaultWidth: c.Processing.DefaultWidth,
		BaselineTopK: c.Processing.BaselineTopK,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", configPath)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "error creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "error writing config file")
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

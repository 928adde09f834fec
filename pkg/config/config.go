// Package config provides configuration loading and management for phasepack.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"phasepack/pkg/phasepack"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many filters are evaluated in parallel
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Parameters for each feature detector
	PhaseCong     phasepack.CongParams     `yaml:"phasecong"`
	PhaseCongMono phasepack.CongMonoParams `yaml:"phasecongmono"`
	PhaseSym      phasepack.SymParams      `yaml:"phasesym"`
	PhaseSymMono  phasepack.SymMonoParams  `yaml:"phasesymmono"`

	// Output parameters
	Output struct {
		// Dir is the directory the result maps are written to
		Dir string `yaml:"dir"`

		// Heatmap renders maps through a colour palette in addition to grayscale
		Heatmap bool `yaml:"heatmap"`

		// Verbose prints progress and a summary of every map
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Use all available cores by default
	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.PhaseCong = phasepack.DefaultCongParams()
	cfg.PhaseCongMono = phasepack.DefaultCongMonoParams()
	cfg.PhaseSym = phasepack.DefaultSymParams()
	cfg.PhaseSymMono = phasepack.DefaultSymMonoParams()

	cfg.Output.Dir = "output"
	cfg.Output.Heatmap = false
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig reads a YAML configuration over the defaults and validates
// the result. Keys absent from the file keep their default values, and a
// missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filepath.Base(configPath), err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating the parent directory. A config
// that does not validate is not written.
func SaveConfig(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	return os.WriteFile(configPath, data, 0644)
}

// CreateDefaultConfigFile writes the default configuration, every detector
// section included, so it can be edited as a template.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate checks every parameter record.
func (c *Config) Validate() error {
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("processing.numCores = %d: %w", c.Processing.NumCores, phasepack.ErrInvalidParameter)
	}
	if err := c.CongParams().Validate(); err != nil {
		return fmt.Errorf("phasecong: %w", err)
	}
	if err := c.CongMonoParams().Validate(); err != nil {
		return fmt.Errorf("phasecongmono: %w", err)
	}
	if err := c.SymParams().Validate(); err != nil {
		return fmt.Errorf("phasesym: %w", err)
	}
	if err := c.SymMonoParams().Validate(); err != nil {
		return fmt.Errorf("phasesymmono: %w", err)
	}
	return nil
}

// CongParams returns the phase congruency parameters with the worker count applied.
func (c *Config) CongParams() phasepack.CongParams {
	p := c.PhaseCong
	p.Workers = c.Processing.NumCores
	return p
}

// CongMonoParams returns the monogenic phase congruency parameters with the
// worker count applied.
func (c *Config) CongMonoParams() phasepack.CongMonoParams {
	p := c.PhaseCongMono
	p.Workers = c.Processing.NumCores
	return p
}

func (c *Config) SymParams() phasepack.SymParams {
	p := c.PhaseSym
	p.Workers = c.Processing.NumCores
	return p
}

func (c *Config) SymMonoParams() phasepack.SymMonoParams {
	p := c.PhaseSymMono
	p.Workers = c.Processing.NumCores
	return p
}

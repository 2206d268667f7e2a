package config

import (
	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/logger"
)

// Environments accepted by BaseConfig.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// BaseConfig contains the fields every streamkit binary carries. Embed it in
// an application config with `mapstructure:",squash"`.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// Base returns c. Application configs embedding BaseConfig inherit it.
func (c *BaseConfig) Base() *BaseConfig { return c }

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	if c.Name == "" {
		return errors.InvalidConfig("name is required").WithDetail("field", "name")
	}
	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return nil
	}
	return errors.InvalidConfig("environment must be one of [development staging production]").
		WithDetail("field", "environment").
		WithDetail("value", c.Environment)
}

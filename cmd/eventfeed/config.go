package main

import (
	"time"

	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/internal/feed"
	"github.com/kbukum/streamkit/iteratee"
	"github.com/kbukum/streamkit/server"
)

const serviceName = "eventfeed"

// Config is the eventfeed configuration, loaded from config.yml and
// EVENTFEED_* environment variables.
type Config struct {
	config.BaseConfig `yaml:",inline" mapstructure:",squash"`

	Engine    iteratee.Config `yaml:"engine" mapstructure:"engine"`
	Feed      feed.Config     `yaml:"feed" mapstructure:"feed"`
	View      ViewConfig      `yaml:"view" mapstructure:"view"`
	HTTP      server.Config   `yaml:"http" mapstructure:"http"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ViewConfig is the default view of a client that does not choose one.
type ViewConfig struct {
	Role  string `yaml:"role" mapstructure:"role" validate:"oneof=manager viewer"`
	Lower int    `yaml:"lower" mapstructure:"lower"`
	Upper int    `yaml:"upper" mapstructure:"upper" validate:"gtfield=Lower"`
}

// TelemetryConfig enables OTLP export of the engine's metrics and spans.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills every unset section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.BaseConfig.ApplyDefaults()
	if c.Engine.Name == "" {
		c.Engine.Name = serviceName
	}
	c.Feed.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	if c.View.Role == "" {
		c.View.Role = string(feed.RoleViewer)
	}
	if c.View.Upper == 0 {
		c.View.Upper = feed.DefaultConfig().MaxAmount
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 15 * time.Second
	}
}

// Validate checks every section's struct tags.
func (c *Config) Validate() error {
	return config.Validate(c)
}

func loadConfig(path string) (*Config, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

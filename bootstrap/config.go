package bootstrap

import (
	"github.com/kbukum/streamkit/config"
)

// Config is the constraint for application configuration types. A struct
// embedding config.BaseConfig gets Base for free and defines ApplyDefaults
// and Validate over its own sections:
//
//	type Config struct {
//	    config.BaseConfig `yaml:",inline" mapstructure:",squash"`
//	    Feed feed.Config  `yaml:"feed" mapstructure:"feed"`
//	}
type Config interface {
	Base() *config.BaseConfig
	ApplyDefaults()
	Validate() error
}

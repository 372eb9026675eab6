package bootstrap

import (
	"github.com/kbukum/filekit/config"
)

// Config is the constraint for application configuration types. A struct
// that embeds config.ServiceConfig by value satisfies it through promoted
// methods:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/filekit/config"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/server"
)

const serviceName = "filekit"

// Config is the process configuration. Disks are read live from the
// settings tree through filesystem.SettingsSource, not from this struct.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config `yaml:"server" mapstructure:"server"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// loadSettings reads the config file, the .env file and the environment.
// FILESYSTEM_DISK selects the default disk.
func loadSettings(c *cli.Context) (*config.Settings, *Config, error) {
	settings, err := config.Load(serviceName,
		config.WithConfigFile(c.String(flagConfig.Name)),
		config.WithEnvFile(c.String(flagEnvFile.Name)),
		config.WithEnvAlias(filesystem.KeyDefaultDisk, "FILESYSTEM_DISK"),
	)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{}
	if err := settings.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if lvl := c.String(flagLogLevel.Name); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return settings, cfg, nil
}

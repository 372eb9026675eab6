package local

import (
	"path/filepath"

	"github.com/kbukum/filekit/validation"
)

// DefaultTempDir is where temporary URL copies live, relative to Root.
const DefaultTempDir = ".temp"

// Config holds local disk configuration.
type Config struct {
	// Root is the directory every path resolves under.
	Root string `mapstructure:"root" validate:"required"`
	// URL is the public base of generated locators.
	URL string `mapstructure:"url" validate:"omitempty,url"`
	// TempDir holds temporary URL copies, relative to Root.
	TempDir string `mapstructure:"temp_dir"`
	// SigningKey enables signed temporary URLs.
	SigningKey string `mapstructure:"signing_key"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.TempDir == "" {
		c.TempDir = DefaultTempDir
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().RelativePath("temp_dir", filepath.ToSlash(c.TempDir)).Validate()
}

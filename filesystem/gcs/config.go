package gcs

import "github.com/kbukum/filekit/validation"

// Config holds Google Cloud Storage disk configuration.
type Config struct {
	// Bucket is the bucket every path lives in.
	Bucket string `mapstructure:"bucket" validate:"required"`
	// Project is the quota project for API calls.
	Project string `mapstructure:"project"`
	// Secret is a service-account key file. Without it Application Default
	// Credentials are used.
	Secret string `mapstructure:"secret"`
	// Endpoint overrides the API endpoint (emulators).
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	// URL is a public base for URL. Defaults to the public GCS host.
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

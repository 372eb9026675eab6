package s3

import (
	"time"

	"github.com/kbukum/filekit/validation"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// MaxPresignTTL is the longest lifetime SigV4 accepts for a presigned URL.
const MaxPresignTTL = 7 * 24 * time.Hour

// Config holds S3 disk configuration.
type Config struct {
	// Bucket is the bucket every path lives in.
	Bucket string `mapstructure:"bucket" validate:"required"`
	// Region is the AWS region.
	Region string `mapstructure:"region" validate:"required"`
	// Key and Secret are static credentials and must be set together.
	// Without them the default AWS credential chain is used.
	Key    string `mapstructure:"key"`
	Secret string `mapstructure:"secret"`
	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	// URL is a public base for URL. Without it URL presigns for MaxPresignTTL.
	URL string `mapstructure:"url" validate:"omitempty,url"`
	// ForcePathStyle forces path-style addressing. It is implied by Endpoint.
	ForcePathStyle bool `mapstructure:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().Pair("key", c.Key, "secret", c.Secret).Validate()
}

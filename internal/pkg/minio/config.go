package minio

import (
	"errors"
	"time"
)

// BucketLookupType represents the type of bucket lookup
type BucketLookupType string

const (
	// BucketLookupAuto automatically determines the bucket lookup type
	BucketLookupAuto BucketLookupType = "auto"
	// BucketLookupDNS uses DNS-style bucket lookup (bucket.endpoint)
	BucketLookupDNS BucketLookupType = "dns"
	// BucketLookupPath uses path-style bucket lookup (endpoint/bucket)
	BucketLookupPath BucketLookupType = "path"
)

// Config object storage used for saving generated artifacts
type Config struct {
	// Endpoint is the S3-compatible object storage endpoint
	// Examples: "play.min.io", "s3.amazonaws.com", "localhost:9000"
	Endpoint string `mapstructure:"endpoint"`

	AccessKeyID     string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_key"`
	SessionToken    string `mapstructure:"session_token"`

	// Region is optional, e.g. "us-east-1"
	Region string `mapstructure:"region"`

	UseSSL bool `mapstructure:"use_ssl"`

	// BucketLookup default: BucketLookupAuto
	BucketLookup BucketLookupType `mapstructure:"bucket_lookup"`

	// CreateBucket makes the target bucket on first upload when missing
	CreateBucket bool `mapstructure:"create_bucket"`

	// RequestTimeout bounds a single upload. Default: 2 minutes
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Enabled reports whether an endpoint is configured at all
func (c *Config) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("minio: endpoint is required")
	}

	if c.AccessKeyID == "" {
		return errors.New("minio: access key ID is required")
	}

	if c.SecretAccessKey == "" {
		return errors.New("minio: secret access key is required")
	}

	if c.BucketLookup != "" &&
		c.BucketLookup != BucketLookupAuto &&
		c.BucketLookup != BucketLookupDNS &&
		c.BucketLookup != BucketLookupPath {
		return errors.New("minio: invalid bucket lookup type")
	}

	return nil
}

// SetDefaults sets default values for unspecified configuration fields
func (c *Config) SetDefaults() {
	if c.BucketLookup == "" {
		c.BucketLookup = BucketLookupAuto
	}

	if c.RequestTimeout == 0 {
		c.RequestTimeout = 2 * time.Minute
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		UseSSL:         true,
		BucketLookup:   BucketLookupAuto,
		RequestTimeout: 2 * time.Minute,
	}
}

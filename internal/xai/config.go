package xai

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the public xAI REST endpoint
	DefaultBaseURL = "https://api.x.ai/v1"

	DefaultSearchModel = "grok-4-1-fast-reasoning"
	DefaultImageModel  = "grok-imagine-image"
	DefaultVideoModel  = "grok-imagine-video"

	DefaultPollInterval = 5 * time.Second
	DefaultPollTimeout  = 5 * time.Minute
)

// Config xAI client configuration
type Config struct {
	// BaseURL API base address, without trailing slash
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// APIKey resolved bearer token
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Timeout per HTTP request. Video waits are bounded by PollTimeout instead.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	SearchModel string `mapstructure:"search_model" yaml:"search_model"`
	ImageModel  string `mapstructure:"image_model" yaml:"image_model"`
	VideoModel  string `mapstructure:"video_model" yaml:"video_model"`

	// PollInterval fixed delay between two video status checks
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// PollTimeout total time a video wait may take
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
}

// Validate checks required fields and fills defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("xai: base_url is required")
	}
	if c.APIKey == "" {
		return errors.New("xai: api_key is required")
	}

	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.SearchModel == "" {
		c.SearchModel = DefaultSearchModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.VideoModel == "" {
		c.VideoModel = DefaultVideoModel
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}

	return nil
}

// DefaultConfig returns a configuration without credentials
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      60 * time.Second,
		SearchModel:  DefaultSearchModel,
		ImageModel:   DefaultImageModel,
		VideoModel:   DefaultVideoModel,
		PollInterval: DefaultPollInterval,
		PollTimeout:  DefaultPollTimeout,
	}
}

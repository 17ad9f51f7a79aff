package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lk2023060901/grok-bridge/internal/credential"
	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/pkg/minio"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

// EnvPrefix environment overrides use GROK_<SECTION>_<KEY>
const EnvPrefix = "GROK"

// DefaultConfigName searched for in the working directory and ~/.config/grok
const DefaultConfigName = "grok"

type Config struct {
	XAI     XAIConfig    `mapstructure:"xai"`
	Video   VideoConfig  `mapstructure:"video"`
	Log     LogConfig    `mapstructure:"log"`
	Storage minio.Config `mapstructure:"storage"`
	MCP     MCPConfig    `mapstructure:"mcp"`
}

type XAIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	APIKeyEnv   string        `mapstructure:"api_key_env"`
	SecretRef   string        `mapstructure:"secret_ref"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchModel string        `mapstructure:"search_model"`
	ImageModel  string        `mapstructure:"image_model"`
	VideoModel  string        `mapstructure:"video_model"`
}

type VideoConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

type MCPConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	HTTPAddr string `mapstructure:"http_addr"`
}

func setDefaults(v *viper.Viper) {
	x := xai.DefaultConfig()
	v.SetDefault("xai.base_url", x.BaseURL)
	v.SetDefault("xai.api_key", "")
	v.SetDefault("xai.api_key_env", credential.DefaultEnvVar)
	v.SetDefault("xai.secret_ref", credential.DefaultSecretRef)
	v.SetDefault("xai.timeout", x.Timeout)
	v.SetDefault("xai.search_model", x.SearchModel)
	v.SetDefault("xai.image_model", x.ImageModel)
	v.SetDefault("xai.video_model", x.VideoModel)

	v.SetDefault("video.poll_interval", x.PollInterval)
	v.SetDefault("video.poll_timeout", x.PollTimeout)

	l := logger.DefaultConfig()
	v.SetDefault("log.level", l.Level)
	v.SetDefault("log.format", l.Format)
	v.SetDefault("log.output", l.Output)
	v.SetDefault("log.file.filename", l.File.Filename)
	v.SetDefault("log.file.maxsize", l.File.MaxSize)
	v.SetDefault("log.file.maxage", l.File.MaxAge)
	v.SetDefault("log.file.maxbackups", l.File.MaxBackups)
	v.SetDefault("log.file.compress", l.File.Compress)
	v.SetDefault("log.enablecaller", l.EnableCaller)
	v.SetDefault("log.enablestacktrace", l.EnableStacktrace)

	s := minio.DefaultConfig()
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.session_token", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.use_ssl", s.UseSSL)
	v.SetDefault("storage.bucket_lookup", string(s.BucketLookup))
	v.SetDefault("storage.create_bucket", false)
	v.SetDefault("storage.request_timeout", s.RequestTimeout)

	v.SetDefault("mcp.name", "grok")
	v.SetDefault("mcp.version", "1.0.0")
	v.SetDefault("mcp.http_addr", "")
}

// LoadConfig reads configuration from path, or from grok.yaml in the usual
// places when path is empty. A missing default file is not an error; a
// missing explicit file is. A .env file in the working directory is loaded
// into the environment first.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/grok")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values viper cannot
func (c *Config) Validate() error {
	if c.XAI.BaseURL == "" {
		return errors.New("conf: xai.base_url is required")
	}
	if c.Video.PollInterval <= 0 {
		return errors.New("conf: video.poll_interval must be positive")
	}
	if c.Video.PollTimeout < c.Video.PollInterval {
		return errors.New("conf: video.poll_timeout must not be shorter than video.poll_interval")
	}
	return nil
}

// XAIClientConfig builds the client configuration around a resolved key
func (c *Config) XAIClientConfig(apiKey string) *xai.Config {
	return &xai.Config{
		BaseURL:      strings.TrimRight(c.XAI.BaseURL, "/"),
		APIKey:       apiKey,
		Timeout:      c.XAI.Timeout,
		SearchModel:  c.XAI.SearchModel,
		ImageModel:   c.XAI.ImageModel,
		VideoModel:   c.XAI.VideoModel,
		PollInterval: c.Video.PollInterval,
		PollTimeout:  c.Video.PollTimeout,
	}
}

// CredentialOptions configures the API key resolver from the xai section
func (c *Config) CredentialOptions() []credential.Option {
	return []credential.Option{
		credential.WithStatic(c.XAI.APIKey),
		credential.WithEnvVar(c.XAI.APIKeyEnv),
		credential.WithSecretRef(c.XAI.SecretRef),
	}
}

// LoggerConfig converts the log section
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: c.Log.Output,
		File: logger.FileConfig{
			Filename:   c.Log.File.Filename,
			MaxSize:    c.Log.File.MaxSize,
			MaxAge:     c.Log.File.MaxAge,
			MaxBackups: c.Log.File.MaxBackups,
			Compress:   c.Log.File.Compress,
		},
		EnableCaller:     c.Log.EnableCaller,
		EnableStacktrace: c.Log.EnableStacktrace,
	}
}

package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/artifact"
	"github.com/lk2023060901/grok-bridge/internal/conf"
	"github.com/lk2023060901/grok-bridge/internal/credential"
	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/pkg/minio"
	"github.com/lk2023060901/grok-bridge/internal/tools"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

// Backend everything the front ends call. *xai.Client satisfies it.
type Backend interface {
	tools.Backend
	WaitForVideo(ctx context.Context, requestID string, opts *xai.PollOptions) (*xai.VideoStatus, error)
}

// Deps the collaborators built once per process
type Deps struct {
	Backend Backend
	Saver   *artifact.Saver
	Cleanup func()
}

// Factory builds Deps from configuration
type Factory func(ctx context.Context, cfg *conf.Config, log *logger.Logger) (*Deps, error)

// Setup loads configuration and builds the logger. opts override the
// configured log section.
func Setup(configPath string, opts ...logger.Option) (*conf.Config, *logger.Logger, error) {
	cfg, err := conf.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.LoggerConfig(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, nil
}

// LevelOptions maps a --log-level flag to logger options. Debug also
// turns on caller information.
func LevelOptions(level string) []logger.Option {
	if level == "" {
		return nil
	}
	opts := []logger.Option{logger.WithLevel(level)}
	if level == "debug" {
		opts = append(opts, logger.WithCaller(true))
	}
	return opts
}

// NewDeps resolves the API key once and wires the xAI client, object
// storage (when configured) and the artifact saver.
func NewDeps(ctx context.Context, cfg *conf.Config, log *logger.Logger) (*Deps, error) {
	apiKey, err := credential.NewResolver(log, cfg.CredentialOptions()...).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	client, err := xai.New(cfg.XAIClientConfig(apiKey), log)
	if err != nil {
		return nil, err
	}

	saverOpts := []artifact.Option{}
	var store *minio.Client
	if cfg.Storage.Enabled() {
		store, err = minio.NewClient(&cfg.Storage, log)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		saverOpts = append(saverOpts, artifact.WithUploader(store))
	}

	log.Debug("dependencies ready",
		zap.String("base_url", client.Config().BaseURL),
		zap.Bool("object_storage", store != nil),
	)

	return &Deps{
		Backend: client,
		Saver:   artifact.NewSaver(log, saverOpts...),
		Cleanup: func() {
			_ = client.Close()
			if store != nil {
				_ = store.Close()
			}
		},
	}, nil
}

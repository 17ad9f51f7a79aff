package minio

import (
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
)

// Client wraps the MinIO client for artifact uploads
type Client struct {
	client *minio.Client
	config *Config
	logger *logger.Logger

	mu      sync.RWMutex
	closed  bool
	ensured map[string]bool
}

// NewClient creates a new MinIO client. No network call is made.
func NewClient(cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidArgument
	}
	if log == nil {
		log = logger.Nop()
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, WrapErrorWithMessage("NewClient", err, "invalid configuration")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}

	switch cfg.BucketLookup {
	case BucketLookupDNS:
		opts.BucketLookup = minio.BucketLookupDNS
	case BucketLookupPath:
		opts.BucketLookup = minio.BucketLookupPath
	default:
		opts.BucketLookup = minio.BucketLookupAuto
	}

	minioClient, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, WrapErrorWithMessage("NewClient", err, "failed to create minio client")
	}

	client := &Client{
		client:  minioClient,
		config:  cfg,
		logger:  log.Named("minio"),
		ensured: make(map[string]bool),
	}

	client.logger.Debug("minio client initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
		zap.Bool("use_ssl", cfg.UseSSL),
		zap.String("bucket_lookup", string(cfg.BucketLookup)),
	)

	return client, nil
}

// Close marks the client closed. Later uploads fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) checkClosed() error {
	if c.IsClosed() {
		return fmt.Errorf("minio: client is closed")
	}
	return nil
}

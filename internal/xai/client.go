package xai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
)

// Client xAI HTTP client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.Logger
	clock      Clock
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock replaces the wall clock used by WaitForVideo
func WithClock(clock Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// New creates an xAI client. cfg must carry an already-resolved API key.
func New(cfg *Config, log *logger.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.Named("xai"),
		clock:  wallClock{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Config returns the effective configuration
func (c *Client) Config() *Config {
	return c.config
}

// doRequest performs one call and returns the raw 2xx body.
// Non-2xx answers become *UpstreamError. Nothing is retried.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	url := c.config.BaseURL + path
	log := c.logger.WithContext(ctx)

	var reqBody io.Reader
	var size int
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		size = len(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("xai request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("body_bytes", size),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("xai request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	log.Debug("xai response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_bytes", len(respData)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstream := newUpstreamError(resp.StatusCode, respData)
		log.Warn("xai upstream error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upstream.Message),
		)
		return nil, upstream
	}

	return respData, nil
}

// newUpstreamError picks the most specific message the vendor gave:
// error.message, then a bare string error, then the HTTP status text.
func newUpstreamError(status int, body []byte) *UpstreamError {
	e := &UpstreamError{StatusCode: status}

	var envelope openai.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		e.Message = envelope.Error.Message
		e.Type = envelope.Error.Type
	}
	if e.Message == "" {
		if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
			e.Message = msg.String()
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("status %d", status)
	}

	return e
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

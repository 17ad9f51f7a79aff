package xai

import (
	"context"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
)

const (
	minDuration = 1
	maxDuration = 15

	// DefaultDuration what front ends send when the caller gives no duration
	DefaultDuration = 5

	Resolution480p    = "480p"
	Resolution720p    = "720p"
	defaultResolution = Resolution720p

	statusUnknown = "unknown"
)

// JobPhase where a video job stands from the poller's point of view
type JobPhase int

const (
	// PhasePending the job is still running (or reported a status we do not know)
	PhasePending JobPhase = iota
	// PhaseCompleted the video is ready
	PhaseCompleted
	// PhaseFailed the vendor gave up on the job
	PhaseFailed
)

func (p JobPhase) String() string {
	switch p {
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Phase classifies a vendor status string. Matching is exact, so "FAILED"
// is an unknown status and keeps the job pending.
func Phase(status string) JobPhase {
	switch status {
	case "completed", "succeeded":
		return PhaseCompleted
	case "failed":
		return PhaseFailed
	default:
		return PhasePending
	}
}

func knownStatus(status string) bool {
	switch status {
	case "completed", "succeeded", "failed", "pending", "queued", "processing", "running", "in_progress":
		return true
	}
	return false
}

type videoGenerationRequest struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	Duration    int    `json:"duration"`
	Resolution  string `json:"resolution"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// GenerateVideo submits an asynchronous video job and returns its handle
func (c *Client) GenerateVideo(ctx context.Context, req *VideoRequest) (*VideoJob, error) {
	if req.Prompt == "" {
		return nil, invalid("prompt", ErrMissingPrompt, "prompt is required")
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptRunes {
		return nil, invalid("prompt", ErrPromptTooLong, "prompt must be at most %d characters", maxPromptRunes)
	}

	duration := req.Duration
	if duration < minDuration || duration > maxDuration {
		return nil, invalid("duration", ErrInvalidDuration, "duration must be %d-%d seconds", minDuration, maxDuration)
	}

	resolution := req.Resolution
	if resolution == "" {
		resolution = defaultResolution
	}
	if resolution != Resolution480p && resolution != Resolution720p {
		return nil, invalid("resolution", ErrInvalidResolution, "resolution must be %s or %s", Resolution480p, Resolution720p)
	}

	model := req.Model
	if model == "" {
		model = c.config.VideoModel
	}

	body := videoGenerationRequest{
		Model:       model,
		Prompt:      req.Prompt,
		Duration:    duration,
		Resolution:  resolution,
		AspectRatio: req.AspectRatio,
		ImageURL:    req.Image,
	}

	data, err := c.doRequest(ctx, "POST", "/video/generations", body)
	if err != nil {
		return nil, err
	}

	id := firstString(data, requestIDPaths...)
	if id == "" {
		return nil, fmt.Errorf("video submit returned no request id: %w", ErrEmptyResponse)
	}

	c.logger.WithContext(ctx).Info("video job submitted",
		zap.String("job_id", id),
		zap.Int("duration", duration),
		zap.String("resolution", resolution),
	)

	return &VideoJob{RequestID: id}, nil
}

// PollVideo fetches one status snapshot for a video job
func (c *Client) PollVideo(ctx context.Context, requestID string) (*VideoStatus, error) {
	if requestID == "" {
		return nil, invalid("request_id", ErrMissingRequestID, "request_id is required")
	}

	data, err := c.doRequest(ctx, "GET", "/video/generations/"+url.PathEscape(requestID), nil)
	if err != nil {
		return nil, err
	}

	status := firstString(data, statusPaths...)
	if status == "" {
		status = statusUnknown
	}

	return &VideoStatus{
		Status:   status,
		URL:      firstString(data, videoURLPaths...),
		Duration: firstNumber(data, durationPaths...),
		Error:    errorText(data),
	}, nil
}

// PollOptions controls WaitForVideo. Zero values take the client defaults.
type PollOptions struct {
	Interval time.Duration
	Timeout  time.Duration

	// OnStatus is called after every successful poll
	OnStatus func(poll int, status *VideoStatus)
}

// WaitForVideo polls a job until it completes, fails or the timeout passes.
//
// The loop is poll, classify, sleep. The deadline is checked after each
// sleep, so the job is never polled once the timeout has elapsed. A poll
// error ends the wait immediately.
func (c *Client) WaitForVideo(ctx context.Context, requestID string, opts *PollOptions) (*VideoStatus, error) {
	if requestID == "" {
		return nil, invalid("request_id", ErrMissingRequestID, "request_id is required")
	}

	var o PollOptions
	if opts != nil {
		o = *opts
	}
	if o.Interval <= 0 {
		o.Interval = c.config.PollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = c.config.PollTimeout
	}

	ctx = logger.WithJobID(ctx, requestID)
	log := c.logger.WithContext(ctx)

	log.Info("waiting for video",
		zap.Duration("timeout", o.Timeout),
		zap.Duration("interval", o.Interval),
	)

	start := c.clock.Now()
	polls := 0

	for {
		status, err := c.PollVideo(ctx, requestID)
		if err != nil {
			return nil, err
		}
		polls++

		if o.OnStatus != nil {
			o.OnStatus(polls, status)
		}

		log.Debug("video status", zap.Int("poll", polls), zap.String("status", status.Status))

		switch Phase(status.Status) {
		case PhaseCompleted:
			log.Info("video completed", zap.Int("polls", polls), zap.String("url", status.URL))
			return status, nil

		case PhaseFailed:
			msg := status.Error
			if msg == "" {
				msg = "unknown error"
			}
			log.Error("video failed", zap.Int("polls", polls), zap.String("error", msg))
			return nil, &VideoFailedError{RequestID: requestID, Message: msg}

		default:
			if !knownStatus(status.Status) {
				log.Warn("unrecognized video status, still waiting", zap.String("status", status.Status))
			}
		}

		if err := c.clock.Sleep(ctx, o.Interval); err != nil {
			return nil, fmt.Errorf("wait for video %s: %w", requestID, err)
		}

		if c.clock.Now().Sub(start) >= o.Timeout {
			log.Error("video wait timed out", zap.Int("polls", polls))
			return nil, &VideoTimeoutError{RequestID: requestID, Timeout: o.Timeout, Polls: polls}
		}
	}
}

package xai

import (
	"errors"
	"fmt"
	"time"
)

// Validation reasons. Returned wrapped in *ValidationError; match with errors.Is.
var (
	ErrMissingQuery          = errors.New("xai: missing query")
	ErrMissingPrompt         = errors.New("xai: missing prompt")
	ErrPromptTooLong         = errors.New("xai: prompt too long")
	ErrConflictingFilter     = errors.New("xai: conflicting filter")
	ErrListTooLong           = errors.New("xai: list too long")
	ErrInvalidCount          = errors.New("xai: invalid count")
	ErrInvalidResponseFormat = errors.New("xai: invalid response format")
	ErrMissingImage          = errors.New("xai: missing image")
	ErrTooManyImages         = errors.New("xai: too many images")
	ErrInvalidDuration       = errors.New("xai: invalid duration")
	ErrInvalidResolution     = errors.New("xai: invalid resolution")
	ErrMissingRequestID      = errors.New("xai: missing request id")
)

// Outcome errors
var (
	ErrUpstream                = errors.New("xai: upstream error")
	ErrEmptyResponse           = errors.New("xai: empty response")
	ErrVideoGenerationFailed   = errors.New("xai: video generation failed")
	ErrVideoGenerationTimedOut = errors.New("xai: video generation timed out")
)

// ValidationError rejects a request before anything is sent
type ValidationError struct {
	Field   string
	Reason  error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func invalid(field string, reason error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// UpstreamError non-2xx answer from the vendor
type UpstreamError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *UpstreamError) Error() string {
	return "API Error: " + e.Message
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// VideoFailedError the vendor reported a terminal failure for a video job
type VideoFailedError struct {
	RequestID string
	Message   string
}

func (e *VideoFailedError) Error() string {
	return "Video generation failed: " + e.Message
}

func (e *VideoFailedError) Is(target error) bool {
	return target == ErrVideoGenerationFailed
}

// VideoTimeoutError the client-side deadline passed before a terminal status
type VideoTimeoutError struct {
	RequestID string
	Timeout   time.Duration
	Polls     int
}

func (e *VideoTimeoutError) Error() string {
	return fmt.Sprintf("Video generation timed out after %dms", e.Timeout.Milliseconds())
}

func (e *VideoTimeoutError) Is(target error) bool {
	return target == ErrVideoGenerationTimedOut
}

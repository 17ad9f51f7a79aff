package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	toolKey      contextKey = "tool"
	jobIDKey     contextKey = "job_id"
)

// WithContext returns a logger with fields from context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	fields := make([]zap.Field, 0, 3)

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if tool, ok := ctx.Value(toolKey).(string); ok && tool != "" {
		fields = append(fields, zap.String("tool", tool))
	}
	if jobID, ok := ctx.Value(jobIDKey).(string); ok && jobID != "" {
		fields = append(fields, zap.String("job_id", jobID))
	}

	if len(fields) == 0 {
		return l
	}

	return l.With(fields...)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// NewRequestContext tags ctx with a fresh request ID. Every CLI invocation
// and every tool call starts from one of these.
func NewRequestContext(ctx context.Context) context.Context {
	return WithRequestID(ctx, uuid.New().String())
}

// WithTool records the tool or subcommand being served
func WithTool(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, toolKey, tool)
}

// WithJobID records the upstream video request id
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

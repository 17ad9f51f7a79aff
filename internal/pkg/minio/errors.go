package minio

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Predefined errors
var (
	// ErrInvalidArgument indicates that an argument is invalid
	ErrInvalidArgument = errors.New("minio: invalid argument")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("minio: invalid bucket name")

	// ErrInvalidObjectName indicates that the object name is invalid
	ErrInvalidObjectName = errors.New("minio: invalid object name")

	// ErrAccessDenied indicates that access is denied
	ErrAccessDenied = errors.New("minio: access denied")
)

// Error represents a MinIO error with additional context
type Error struct {
	Op      string // Operation that failed
	Err     error  // Original error
	Bucket  string
	Object  string
	Message string
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Bucket != "" && e.Object != "" {
		return fmt.Sprintf("minio: %s failed for bucket=%s, object=%s: %v", e.Op, e.Bucket, e.Object, e.Err)
	} else if e.Bucket != "" {
		return fmt.Sprintf("minio: %s failed for bucket=%s: %v", e.Op, e.Bucket, e.Err)
	}

	if e.Message != "" {
		return fmt.Sprintf("minio: %s failed: %s: %v", e.Op, e.Message, e.Err)
	}

	return fmt.Sprintf("minio: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsAccessDenied checks if the error is an "access denied" error
func IsAccessDenied(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrAccessDenied) {
		return true
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		return minioErr.Code == "AccessDenied" || minioErr.Code == "Forbidden"
	}

	return false
}

// IsBucketAlreadyExists checks if the error is a "bucket already exists" error
func IsBucketAlreadyExists(err error) bool {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		return minioErr.Code == "BucketAlreadyExists" || minioErr.Code == "BucketAlreadyOwnedByYou"
	}
	return false
}

// WrapError wraps an error with operation context
func WrapError(op string, err error, bucket, object string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Op:     op,
		Err:    err,
		Bucket: bucket,
		Object: object,
	}
}

// WrapErrorWithMessage wraps an error with operation context and a message
func WrapErrorWithMessage(op string, err error, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Op:      op,
		Err:     err,
		Message: message,
	}
}

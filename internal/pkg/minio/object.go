package minio

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// PutObjectOptions represents options for uploading an object
type PutObjectOptions struct {
	ContentType  string
	UserMetadata map[string]string
}

// UploadInfo represents information about an uploaded object
type UploadInfo struct {
	Bucket    string
	Key       string
	ETag      string
	Size      int64
	Location  string
	VersionID string
}

// URI returns the s3:// form of the uploaded object
func (u UploadInfo) URI() string {
	return FormatURI(u.Bucket, u.Key)
}

// EnsureBucket creates bucketName when it does not exist yet.
// The answer is remembered for the lifetime of the client.
func (c *Client) EnsureBucket(ctx context.Context, bucketName string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	if err := ValidateBucketName(bucketName); err != nil {
		return WrapError("EnsureBucket", err, bucketName, "")
	}

	c.mu.RLock()
	done := c.ensured[bucketName]
	c.mu.RUnlock()
	if done {
		return nil
	}

	exists, err := c.client.BucketExists(ctx, bucketName)
	if err != nil {
		return WrapError("EnsureBucket", err, bucketName, "")
	}
	if !exists {
		err := c.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: c.config.Region})
		if err != nil && !IsBucketAlreadyExists(err) {
			return WrapError("EnsureBucket", err, bucketName, "")
		}
		c.logger.Info("bucket created", zap.String("bucket", bucketName))
	}

	c.mu.Lock()
	c.ensured[bucketName] = true
	c.mu.Unlock()

	return nil
}

// PutObject uploads an object to a bucket
func (c *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts PutObjectOptions) (UploadInfo, error) {
	if err := c.checkClosed(); err != nil {
		return UploadInfo{}, err
	}

	if bucketName == "" {
		return UploadInfo{}, WrapError("PutObject", ErrInvalidBucketName, bucketName, objectName)
	}

	if err := ValidateObjectName(objectName); err != nil {
		return UploadInfo{}, WrapError("PutObject", ErrInvalidObjectName, bucketName, objectName)
	}

	if c.config.CreateBucket {
		if err := c.EnsureBucket(ctx, bucketName); err != nil {
			return UploadInfo{}, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	info, err := c.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.UserMetadata,
	})
	if err != nil {
		return UploadInfo{}, WrapError("PutObject", err, bucketName, objectName)
	}

	c.logger.WithContext(ctx).Info("object uploaded",
		zap.String("bucket", bucketName),
		zap.String("object", objectName),
		zap.Int64("size", info.Size),
		zap.String("etag", info.ETag),
	)

	return UploadInfo{
		Bucket:    info.Bucket,
		Key:       info.Key,
		ETag:      info.ETag,
		Size:      info.Size,
		Location:  info.Location,
		VersionID: info.VersionID,
	}, nil
}

package artifact

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/pkg/minio"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

// ErrNoStorage an s3:// destination was given but no object storage is configured
var ErrNoStorage = errors.New("artifact: object storage is not configured")

// ErrNoContent the generated item carries neither a URL nor inline data
var ErrNoContent = errors.New("artifact: nothing to save")

// Uploader is the slice of the object storage client the saver needs
type Uploader interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Saver downloads generated media and writes it to a local file or to
// object storage.
type Saver struct {
	httpClient *http.Client
	uploader   Uploader
	logger     *logger.Logger
}

// Option customizes a Saver
type Option func(*Saver)

// WithHTTPClient replaces the download client
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Saver) {
		s.httpClient = hc
	}
}

// WithUploader enables s3:// destinations
func WithUploader(u Uploader) Option {
	return func(s *Saver) {
		s.uploader = u
	}
}

func NewSaver(log *logger.Logger, opts ...Option) *Saver {
	if log == nil {
		log = logger.Nop()
	}

	s := &Saver{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     log.Named("artifact"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SuffixedPath names the i-th (zero based) of several outputs sharing dest:
// the first keeps dest, later ones get -2, -3 before the extension.
func SuffixedPath(dest string, i int) string {
	if i == 0 {
		return dest
	}
	ext := filepath.Ext(dest)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(dest, ext), i+1, ext)
}

// SaveURL downloads url and stores it at dest. It returns where the data went.
func (s *Saver) SaveURL(ctx context.Context, url, dest string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}

	s.logger.WithContext(ctx).Debug("artifact downloaded",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
	)

	return s.SaveBytes(ctx, data, resp.Header.Get("Content-Type"), dest)
}

// SaveBytes stores data at dest, which is a file path or s3://bucket/key
func (s *Saver) SaveBytes(ctx context.Context, data []byte, contentType, dest string) (string, error) {
	if minio.IsURI(dest) {
		return s.upload(ctx, data, contentType, dest)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}

	s.logger.WithContext(ctx).Info("artifact written",
		zap.String("path", dest),
		zap.Int("bytes", len(data)),
	)

	return dest, nil
}

func (s *Saver) upload(ctx context.Context, data []byte, contentType, dest string) (string, error) {
	if s.uploader == nil {
		return "", ErrNoStorage
	}

	bucket, key, err := minio.ParseURI(dest)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	info, err := s.uploader.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"request-id": logger.GetRequestID(ctx)},
	})
	if err != nil {
		if minio.IsAccessDenied(err) {
			return "", fmt.Errorf("upload %s: access denied, check storage.access_key and storage.secret_key: %w", dest, err)
		}
		return "", err
	}

	return info.URI(), nil
}

// SaveImage stores one generated image, downloading it or decoding the
// inline payload.
func (s *Saver) SaveImage(ctx context.Context, img xai.GeneratedImage, dest string) (string, error) {
	switch {
	case img.URL != "":
		return s.SaveURL(ctx, img.URL, dest)
	case img.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return "", fmt.Errorf("decode inline image: %w", err)
		}
		return s.SaveBytes(ctx, data, "", dest)
	default:
		return "", ErrNoContent
	}
}

// maxParallelSaves bounds concurrent downloads of one batch
const maxParallelSaves = 4

// SaveImages stores every image concurrently, suffixing the destination
// after the first. Locations keep the order of images; the first failure
// in that order is returned.
func (s *Saver) SaveImages(ctx context.Context, images []xai.GeneratedImage, dest string) ([]string, error) {
	if len(images) == 0 {
		return []string{}, nil
	}

	size := min(len(images), maxParallelSaves)
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(p any) {
		s.logger.Error("artifact save panicked", zap.Any("panic", p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create save pool: %w", err)
	}
	defer pool.Release()

	saved := make([]string, len(images))
	errs := make([]error, len(images))

	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			saved[i], errs[i] = s.SaveImage(ctx, img, SuffixedPath(dest, i))
		}); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit save: %w", err)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return saved[:i], err
		}
	}
	return saved, nil
}

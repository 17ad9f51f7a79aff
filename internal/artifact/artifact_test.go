package artifact

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/pkg/minio"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

type fakeUploader struct {
	bucket      string
	key         string
	data        []byte
	contentType string
	metadata    map[string]string
	err         error
}

func (f *fakeUploader) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.bucket, f.key, f.data = bucketName, objectName, data
	f.contentType = opts.ContentType
	f.metadata = opts.UserMetadata
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func mediaServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSuffixedPath(t *testing.T) {
	tests := []struct {
		dest string
		i    int
		want string
	}{
		{"out.png", 0, "out.png"},
		{"out.png", 1, "out-2.png"},
		{"out.png", 2, "out-3.png"},
		{"dir/out", 1, "dir/out-2"},
		{"s3://media/a/b.jpg", 1, "s3://media/a/b-2.jpg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SuffixedPath(tt.dest, tt.i))
	}
}

func TestSaveURL_File(t *testing.T) {
	body := []byte("fake mp4 payload")
	srv := mediaServer(t, body)
	saver := NewSaver(logger.Nop())

	dest := filepath.Join(t.TempDir(), "nested", "clip.mp4")
	loc, err := saver.SaveURL(context.Background(), srv.URL+"/clip.mp4", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, loc)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestSaveURL_HTTPError(t *testing.T) {
	srv := mediaServer(t, nil)
	saver := NewSaver(nil)

	_, err := saver.SaveURL(context.Background(), srv.URL+"/missing", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestSaveURL_ObjectStorage(t *testing.T) {
	body := []byte("fake mp4 payload")
	srv := mediaServer(t, body)
	up := &fakeUploader{}
	saver := NewSaver(nil, WithUploader(up))

	ctx := logger.WithRequestID(context.Background(), "req-42")
	loc, err := saver.SaveURL(ctx, srv.URL+"/clip.mp4", "s3://media/videos/clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, "s3://media/videos/clip.mp4", loc)
	assert.Equal(t, "media", up.bucket)
	assert.Equal(t, "videos/clip.mp4", up.key)
	assert.Equal(t, body, up.data)
	assert.Equal(t, "video/mp4", up.contentType)
	assert.Equal(t, "req-42", up.metadata["request-id"])
}

func TestSaveBytes_ObjectStorageErrors(t *testing.T) {
	_, err := NewSaver(nil).SaveBytes(context.Background(), []byte("x"), "", "s3://media/a.png")
	assert.True(t, errors.Is(err, ErrNoStorage))

	_, err = NewSaver(nil, WithUploader(&fakeUploader{})).SaveBytes(context.Background(), []byte("x"), "", "s3://Bad_Bucket/a.png")
	assert.True(t, errors.Is(err, minio.ErrInvalidBucketName))

	_, err = NewSaver(nil, WithUploader(&fakeUploader{err: minio.ErrAccessDenied})).SaveBytes(context.Background(), []byte("x"), "", "s3://media/a.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, minio.ErrAccessDenied))
	assert.Contains(t, err.Error(), "access denied, check storage.access_key")

	boom := errors.New("boom")
	_, err = NewSaver(nil, WithUploader(&fakeUploader{err: boom})).SaveBytes(context.Background(), []byte("x"), "", "s3://media/a.png")
	assert.True(t, errors.Is(err, boom))
}

func TestSaveImages(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	srv := mediaServer(t, []byte("remote image"))
	saver := NewSaver(nil)
	dest := filepath.Join(t.TempDir(), "out.png")

	saved, err := saver.SaveImages(context.Background(), []xai.GeneratedImage{
		{URL: srv.URL + "/1.png"},
		{B64JSON: base64.StdEncoding.EncodeToString(png)},
	}, dest)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, dest, saved[0])
	assert.Equal(t, filepath.Join(filepath.Dir(dest), "out-2.png"), saved[1])

	second, err := os.ReadFile(saved[1])
	require.NoError(t, err)
	assert.True(t, bytes.Equal(png, second))
}

func TestSaveImage_Errors(t *testing.T) {
	saver := NewSaver(nil)
	dest := filepath.Join(t.TempDir(), "x.png")

	_, err := saver.SaveImage(context.Background(), xai.GeneratedImage{}, dest)
	assert.True(t, errors.Is(err, ErrNoContent))

	_, err = saver.SaveImage(context.Background(), xai.GeneratedImage{B64JSON: "%%%"}, dest)
	assert.Error(t, err)
}

func TestSaveImages_FirstFailureInOrder(t *testing.T) {
	srv := mediaServer(t, []byte("remote image"))
	saver := NewSaver(nil)
	dest := filepath.Join(t.TempDir(), "out.png")

	saved, err := saver.SaveImages(context.Background(), []xai.GeneratedImage{
		{URL: srv.URL + "/1.png"},
		{},
		{URL: srv.URL + "/3.png"},
	}, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoContent))
	assert.Equal(t, []string{dest}, saved)
}

func TestSaveImages_Empty(t *testing.T) {
	saved, err := NewSaver(nil).SaveImages(context.Background(), nil, "out.png")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

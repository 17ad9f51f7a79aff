package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/grok-bridge/internal/artifact"
	"github.com/lk2023060901/grok-bridge/internal/conf"
	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

type fakeBackend struct {
	searchWeb *xai.SearchWebRequest
	searchX   *xai.SearchXRequest
	image     *xai.ImageRequest
	edit      *xai.ImageEditRequest
	video     *xai.VideoRequest
	waitOpts  *xai.PollOptions

	searchResult *xai.SearchResult
	imageResult  *xai.ImageResult
	status       *xai.VideoStatus
	err          error
}

func (f *fakeBackend) SearchWeb(ctx context.Context, req *xai.SearchWebRequest) (*xai.SearchResult, error) {
	f.searchWeb = req
	return f.searchResult, f.err
}

func (f *fakeBackend) SearchX(ctx context.Context, req *xai.SearchXRequest) (*xai.SearchResult, error) {
	f.searchX = req
	return f.searchResult, f.err
}

func (f *fakeBackend) GenerateImage(ctx context.Context, req *xai.ImageRequest) (*xai.ImageResult, error) {
	f.image = req
	return f.imageResult, f.err
}

func (f *fakeBackend) EditImage(ctx context.Context, req *xai.ImageEditRequest) (*xai.ImageResult, error) {
	f.edit = req
	return f.imageResult, f.err
}

func (f *fakeBackend) GenerateVideo(ctx context.Context, req *xai.VideoRequest) (*xai.VideoJob, error) {
	f.video = req
	if f.err != nil {
		return nil, f.err
	}
	return &xai.VideoJob{RequestID: "vid-123"}, nil
}

func (f *fakeBackend) PollVideo(ctx context.Context, requestID string) (*xai.VideoStatus, error) {
	return f.status, f.err
}

func (f *fakeBackend) WaitForVideo(ctx context.Context, requestID string, opts *xai.PollOptions) (*xai.VideoStatus, error) {
	f.waitOpts = opts
	if opts != nil && opts.OnStatus != nil {
		opts.OnStatus(1, f.status)
	}
	return f.status, f.err
}

func run(t *testing.T, backend *fakeBackend, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithCleanup(t, backend, args...)
	return out, err
}

// runWithCleanup also reports whether the dependencies were released
func runWithCleanup(t *testing.T, backend *fakeBackend, args ...string) (string, bool, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "grok.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))

	cleaned := false
	factory := func(ctx context.Context, cfg *conf.Config, log *logger.Logger) (*Deps, error) {
		return &Deps{
			Backend: backend,
			Saver:   artifact.NewSaver(log),
			Cleanup: func() { cleaned = true },
		}, nil
	}

	var out bytes.Buffer
	err := Execute(context.Background(), &out, factory, append(args, "--config", cfgPath))
	return out.String(), cleaned, err
}

func TestSearchWeb(t *testing.T) {
	backend := &fakeBackend{searchResult: &xai.SearchResult{
		Content: "Answer.",
		Citations: []xai.Citation{
			{Title: "Go", URL: "https://go.dev"},
			{URL: "https://example.com"},
		},
	}}

	out, err := run(t, backend, "search-web", "latest go", "--domains", "go.dev,golang.org", "--images")
	require.NoError(t, err)
	assert.Equal(t, "Answer.\n\nSources:\n  1. Go - https://go.dev\n  2. Untitled - https://example.com\n", out)

	assert.Equal(t, "latest go", backend.searchWeb.Query)
	assert.Equal(t, []string{"go.dev", "golang.org"}, backend.searchWeb.AllowedDomains)
	assert.Nil(t, backend.searchWeb.ExcludedDomains)
	assert.True(t, backend.searchWeb.EnableImageUnderstanding)
}

func TestSearchX(t *testing.T) {
	backend := &fakeBackend{searchResult: &xai.SearchResult{Content: "Summary."}}

	out, err := run(t, backend, "search-x", "launch", "--exclude-handles", "spam", "--from", "2025-01-01", "--videos")
	require.NoError(t, err)
	assert.Equal(t, "Summary.\n", out)

	assert.Nil(t, backend.searchX.AllowedHandles)
	assert.Equal(t, []string{"spam"}, backend.searchX.ExcludedHandles)
	assert.Equal(t, "2025-01-01", backend.searchX.FromDate)
	assert.True(t, backend.searchX.EnableVideoUnderstanding)
	assert.False(t, backend.searchX.EnableImageUnderstanding)
}

func TestMissingArgument(t *testing.T) {
	tests := []struct {
		args    []string
		wantMsg string
	}{
		{args: []string{"search-web"}, wantMsg: "query required"},
		{args: []string{"search-x"}, wantMsg: "query required"},
		{args: []string{"imagine"}, wantMsg: "prompt required"},
		{args: []string{"edit"}, wantMsg: "prompt required"},
		{args: []string{"video"}, wantMsg: "prompt required"},
		{args: []string{"video-status"}, wantMsg: "request_id required"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			_, err := run(t, &fakeBackend{}, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestBackendErrorPropagates(t *testing.T) {
	backend := &fakeBackend{err: errors.New("API Error: Invalid model")}

	_, err := run(t, backend, "search-web", "q")
	require.Error(t, err)
	assert.Equal(t, "API Error: Invalid model", err.Error())
}

func TestCleanupRunsOnFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("API Error: Invalid model")}

	_, cleaned, err := runWithCleanup(t, backend, "search-web", "q")
	require.Error(t, err)
	assert.True(t, cleaned)

	_, cleaned, err = runWithCleanup(t, &fakeBackend{searchResult: &xai.SearchResult{Content: "ok"}}, "search-web", "q")
	require.NoError(t, err)
	assert.True(t, cleaned)
}

func TestLevelOptions(t *testing.T) {
	assert.Empty(t, LevelOptions(""))
	assert.Len(t, LevelOptions("info"), 1)
	assert.Len(t, LevelOptions("debug"), 2)

	cfg := logger.DefaultConfig()
	for _, opt := range LevelOptions("debug") {
		opt(cfg)
	}
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.EnableCaller)
}

func TestImagine_Print(t *testing.T) {
	backend := &fakeBackend{imageResult: &xai.ImageResult{Images: []xai.GeneratedImage{
		{URL: "https://cdn/1.jpg", RevisedPrompt: "a fox"},
		{B64JSON: "aGVsbG8="},
	}}}

	out, err := run(t, backend, "imagine", "fox", "--n", "2", "--aspect", "1:1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/1.jpg\nRevised prompt: a fox\n[base64 data]\n", out)

	assert.Equal(t, 2, backend.image.N)
	assert.Equal(t, "1:1", backend.image.AspectRatio)
	assert.Equal(t, "url", backend.image.ResponseFormat)
}

func TestImagine_Output(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "jpeg-bytes")
	}))
	defer media.Close()

	backend := &fakeBackend{imageResult: &xai.ImageResult{Images: []xai.GeneratedImage{
		{URL: media.URL + "/1.jpg"},
		{B64JSON: "aGVsbG8="},
	}}}

	dest := filepath.Join(t.TempDir(), "out", "fox.jpg")
	second := filepath.Join(filepath.Dir(dest), "fox-2.jpg")

	out, err := run(t, backend, "imagine", "fox", "--n", "2", "--output", dest)
	require.NoError(t, err)
	assert.Equal(t, "Saved to "+dest+"\nSaved to "+second+"\n", out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestEdit(t *testing.T) {
	backend := &fakeBackend{imageResult: &xai.ImageResult{Images: []xai.GeneratedImage{{URL: "https://cdn/e.jpg"}}}}

	out, err := run(t, backend, "edit", "make it night", "--image", "https://a/1.png", "--image", "b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/e.jpg\n", out)

	assert.Equal(t, []string{"https://a/1.png", "b.png"}, backend.edit.Images)
	assert.Equal(t, 1, backend.edit.N)
}

func TestVideo_NoWait(t *testing.T) {
	backend := &fakeBackend{}

	out, err := run(t, backend, "video", "a cat", "--duration", "10", "--resolution", "480p")
	require.NoError(t, err)
	assert.Equal(t, "Video generation started. Request ID: vid-123\nCheck status: grok video-status vid-123\n", out)

	assert.Equal(t, 10, backend.video.Duration)
	assert.Equal(t, "480p", backend.video.Resolution)
	assert.Nil(t, backend.waitOpts)
}

func TestVideo_Wait(t *testing.T) {
	backend := &fakeBackend{status: &xai.VideoStatus{Status: "completed", URL: "https://cdn/v.mp4"}}

	out, err := run(t, backend, "video", "a cat", "--wait", "--poll-interval", "2s")
	require.NoError(t, err)
	assert.Equal(t, "Video generation started. Request ID: vid-123\n"+
		"Waiting for completion...\n"+
		"Status: completed\n"+
		"URL: https://cdn/v.mp4\n", out)

	require.NotNil(t, backend.waitOpts)
	assert.Equal(t, "2s", backend.waitOpts.Interval.String())
	assert.Equal(t, 5, backend.video.Duration)
	assert.Equal(t, xai.Resolution720p, backend.video.Resolution)
}

func TestVideo_OutputImpliesWait(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "mp4")
	}))
	defer media.Close()

	backend := &fakeBackend{status: &xai.VideoStatus{Status: "completed", URL: media.URL + "/v.mp4"}}
	dest := filepath.Join(t.TempDir(), "cat.mp4")

	out, err := run(t, backend, "video", "a cat", "--output", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Waiting for completion...\n")
	assert.Contains(t, out, "Saved to "+dest+"\n")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "mp4", string(data))
}

func TestVideo_WaitFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("Video generation failed: nsfw")}

	_, err := run(t, backend, "video", "a cat", "--wait")
	require.Error(t, err)
	assert.Equal(t, "Video generation failed: nsfw", err.Error())
}

func TestVideoStatus(t *testing.T) {
	backend := &fakeBackend{status: &xai.VideoStatus{Status: "pending"}}

	out, err := run(t, backend, "video-status", "vid-123")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"status\": \"pending\"\n}\n", out)

	out, err = run(t, backend, "video-status", "vid-123", "--format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "status: pending\n", out)
}

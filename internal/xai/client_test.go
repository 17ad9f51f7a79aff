package xai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
)

const testAPIKey = "xai-test-key"

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// stubServer stands in for the vendor API and records every call
type stubServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newStubServer(t *testing.T, handler http.HandlerFunc) *stubServer {
	t.Helper()

	s := &stubServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Header: r.Header.Clone(),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		handler(w, r)
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *stubServer) Requests() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

func (s *stubServer) LastRequest(t *testing.T) recordedRequest {
	t.Helper()
	reqs := s.Requests()
	require.NotEmpty(t, reqs, "no request reached the stub")
	return reqs[len(reqs)-1]
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// fakeClock advances only when slept on
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

func setupTestClient(t *testing.T, stub *stubServer, opts ...Option) *Client {
	t.Helper()

	client, err := New(&Config{
		BaseURL: stub.URL,
		APIKey:  testAPIKey,
		Timeout: 5 * time.Second,
	}, logger.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: &Config{BaseURL: DefaultBaseURL, APIKey: testAPIKey},
		},
		{
			name:    "missing base url",
			config:  &Config{APIKey: testAPIKey},
			wantErr: true,
		},
		{
			name:    "missing api key",
			config:  &Config{BaseURL: DefaultBaseURL},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config, nil)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultSearchModel, client.Config().SearchModel)
			assert.Equal(t, DefaultImageModel, client.Config().ImageModel)
			assert.Equal(t, DefaultVideoModel, client.Config().VideoModel)
			assert.Equal(t, DefaultPollInterval, client.Config().PollInterval)
			assert.Equal(t, DefaultPollTimeout, client.Config().PollTimeout)
			assert.NoError(t, client.Close())
		})
	}
}

func TestDoRequest_Headers(t *testing.T) {
	stub := newStubServer(t, jsonHandler(http.StatusOK, `{"ok":true}`))
	client := setupTestClient(t, stub)

	_, err := client.doRequest(context.Background(), http.MethodPost, "/responses", map[string]string{"a": "b"})
	require.NoError(t, err)

	req := stub.LastRequest(t)
	assert.Equal(t, "Bearer "+testAPIKey, req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "b", req.Body["a"])
}

func TestDoRequest_UpstreamError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantType string
	}{
		{
			name:     "openai style envelope",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Invalid model","type":"invalid_request_error"}}`,
			wantMsg:  "API Error: Invalid model",
			wantType: "invalid_request_error",
		},
		{
			name:    "bare string error",
			status:  http.StatusForbidden,
			body:    `{"code":"x","error":"Incorrect API key provided"}`,
			wantMsg: "API Error: Incorrect API key provided",
		},
		{
			name:    "no body falls back to status text",
			status:  http.StatusTooManyRequests,
			body:    ``,
			wantMsg: "API Error: Too Many Requests",
		},
		{
			name:    "non json body",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantMsg: "API Error: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubServer(t, jsonHandler(tt.status, tt.body))
			client := setupTestClient(t, stub)

			_, err := client.doRequest(context.Background(), http.MethodGet, "/video/generations/abc", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUpstream))
			assert.Equal(t, tt.wantMsg, err.Error())

			var upstream *UpstreamError
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, tt.status, upstream.StatusCode)
			assert.Equal(t, tt.wantType, upstream.Type)
		})
	}
}

func TestDoRequest_NoRetry(t *testing.T) {
	stub := newStubServer(t, jsonHandler(http.StatusServiceUnavailable, `{"error":"overloaded"}`))
	client := setupTestClient(t, stub)

	_, err := client.SearchWeb(context.Background(), &SearchWebRequest{Query: "q"})
	require.Error(t, err)
	assert.Len(t, stub.Requests(), 1)
}

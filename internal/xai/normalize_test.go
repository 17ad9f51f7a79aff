package xai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstString(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		paths []string
		want  string
	}{
		{name: "first present wins", body: `{"request_id":"a","id":"b"}`, paths: requestIDPaths, want: "a"},
		{name: "falls through to second", body: `{"id":"b"}`, paths: requestIDPaths, want: "b"},
		{name: "empty string skipped", body: `{"request_id":"","id":"b"}`, paths: requestIDPaths, want: "b"},
		{name: "null skipped", body: `{"state":null,"status":"queued"}`, paths: statusPaths, want: "queued"},
		{name: "nested path", body: `{"video":{"url":"https://v/x"}}`, paths: videoURLPaths, want: "https://v/x"},
		{name: "nothing present", body: `{"other":1}`, paths: videoURLPaths, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstString([]byte(tt.body), tt.paths...))
		})
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "absent", body: `{}`, want: ""},
		{name: "null", body: `{"error":null}`, want: ""},
		{name: "string", body: `{"error":"quota"}`, want: "quota"},
		{name: "object with message", body: `{"error":{"message":"bad prompt"}}`, want: "bad prompt"},
		{name: "object without message", body: `{"error":{"code":7}}`, want: `{"code":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorText([]byte(tt.body)))
		})
	}
}

func TestLastOutputContent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "no output", body: `{}`, want: ""},
		{name: "string content", body: `{"output":[{"content":"first"},{"content":"last"}]}`, want: "last"},
		{name: "parts", body: `{"output":[{"content":[{"text":"a"},"b",{"type":"other"}]}]}`, want: "a\nb"},
		{name: "last item without content", body: `{"output":[{"content":"x"},{"type":"tool"}]}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lastOutputContent([]byte(tt.body)))
		})
	}
}

func TestUsage(t *testing.T) {
	assert.Equal(t, map[string]any{}, usage([]byte(`{}`)))
	assert.Equal(t, map[string]any{"total_tokens": float64(3)}, usage([]byte(`{"usage":{"total_tokens":3}}`)))
}

package xai

import (
	"strings"

	"github.com/tidwall/gjson"
)

// The vendor is inconsistent about field names across endpoints and model
// versions. Every lookup lists its candidates once, in priority order, and
// the first present non-empty value wins.
var (
	requestIDPaths = []string{"request_id", "id"}
	statusPaths    = []string{"state", "status"}
	videoURLPaths  = []string{"video_url", "url", "video.url"}
	durationPaths  = []string{"duration", "video.duration"}
)

func firstString(body []byte, paths ...string) string {
	for _, r := range gjson.GetManyBytes(body, paths...) {
		if r.Exists() && r.Type != gjson.Null && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

func firstNumber(body []byte, paths ...string) float64 {
	for _, r := range gjson.GetManyBytes(body, paths...) {
		if r.Type == gjson.Number {
			return r.Float()
		}
	}
	return 0
}

// errorText flattens an error field that may be a string, an object with a
// message, or anything else.
func errorText(body []byte) string {
	r := gjson.GetBytes(body, "error")
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return ""
	case r.Type == gjson.String:
		return r.String()
	case r.IsObject():
		if msg := r.Get("message"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
		return r.Raw
	default:
		return r.String()
	}
}

// lastOutputContent returns the text of the final output item of a
// responses call. Content is either a plain string or a list of parts.
func lastOutputContent(body []byte) string {
	output := gjson.GetBytes(body, "output").Array()
	if len(output) == 0 {
		return ""
	}

	content := output[len(output)-1].Get("content")
	switch {
	case content.Type == gjson.String:
		return content.String()
	case content.IsArray():
		var parts []string
		for _, part := range content.Array() {
			if part.Type == gjson.String {
				parts = append(parts, part.String())
				continue
			}
			if text := part.Get("text"); text.Exists() {
				parts = append(parts, text.String())
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// citations accepts both plain URL strings and {title,url} objects.
func citations(body []byte) []Citation {
	items := gjson.GetBytes(body, "citations").Array()
	out := make([]Citation, 0, len(items))
	for _, item := range items {
		switch {
		case item.Type == gjson.String:
			out = append(out, Citation{URL: item.String()})
		case item.IsObject():
			out = append(out, Citation{
				Title: item.Get("title").String(),
				URL:   item.Get("url").String(),
			})
		}
	}
	return out
}

func usage(body []byte) map[string]any {
	r := gjson.GetBytes(body, "usage")
	if m, ok := r.Value().(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

package xai

import "encoding/json"

// SearchWebRequest web search parameters. A nil list means "not supplied";
// an empty but non-nil list still counts as supplied.
type SearchWebRequest struct {
	Query                    string
	Model                    string
	AllowedDomains           []string
	ExcludedDomains          []string
	EnableImageUnderstanding bool
}

// SearchXRequest X (social) search parameters
type SearchXRequest struct {
	Query                    string
	Model                    string
	AllowedHandles           []string // without @
	ExcludedHandles          []string // without @
	FromDate                 string   // YYYY-MM-DD
	ToDate                   string   // YYYY-MM-DD
	EnableImageUnderstanding bool
	EnableVideoUnderstanding bool
}

// Citation one source backing a search answer
type Citation struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// SearchResult synthesized answer. Citations keep vendor order.
type SearchResult struct {
	Content   string          `json:"content" yaml:"content"`
	Citations []Citation      `json:"citations" yaml:"citations"`
	Usage     map[string]any  `json:"usage" yaml:"usage"`
	Raw       json.RawMessage `json:"raw_response,omitempty" yaml:"-"`
}

// ImageRequest text-to-image parameters
type ImageRequest struct {
	Prompt         string
	Model          string
	N              int    // 1-10, zero is rejected
	ResponseFormat string // url or b64_json, empty means url
	AspectRatio    string
}

// ImageEditRequest image edit parameters. Each image is a URL, a data URI
// or a local file path.
type ImageEditRequest struct {
	Prompt         string
	Images         []string
	Model          string
	N              int // 1-10, zero is rejected
	ResponseFormat string
}

// GeneratedImage one result image
type GeneratedImage struct {
	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty" yaml:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty" yaml:"revised_prompt,omitempty"`
}

// ImageResult images returned by a generate or edit call
type ImageResult struct {
	Images []GeneratedImage `json:"images" yaml:"images"`
}

// VideoRequest video generation parameters
type VideoRequest struct {
	Prompt      string
	Model       string
	Duration    int    // seconds, 0 means 5
	Resolution  string // 480p or 720p, empty means 720p
	AspectRatio string
	Image       string // seed image URL for image-to-video
}

// VideoJob handle for an asynchronous generation
type VideoJob struct {
	RequestID string `json:"request_id" yaml:"request_id"`
}

// VideoStatus normalized status snapshot. State lives server-side.
type VideoStatus struct {
	Status   string  `json:"status" yaml:"status"`
	URL      string  `json:"url,omitempty" yaml:"url,omitempty"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Error    string  `json:"error,omitempty" yaml:"error,omitempty"`
}

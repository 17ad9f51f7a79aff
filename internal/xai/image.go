package xai

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	maxPromptRunes = 8000
	minImages      = 1
	maxImages      = 10
	maxEditSources = 3
)

type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
	AspectRatio    string `json:"aspect_ratio,omitempty"`
}

type imageEditRequest struct {
	Model          string `json:"model"`
	Image          string `json:"image"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// validateImageParams checks prompt, count and response format and returns
// the format with its default applied. Zero is not a valid count.
func validateImageParams(prompt string, n int, format string) (int, string, error) {
	if prompt == "" {
		return 0, "", invalid("prompt", ErrMissingPrompt, "prompt is required")
	}
	if utf8.RuneCountInString(prompt) > maxPromptRunes {
		return 0, "", invalid("prompt", ErrPromptTooLong, "prompt must be at most %d characters", maxPromptRunes)
	}

	if n < minImages || n > maxImages {
		return 0, "", invalid("n", ErrInvalidCount, "n must be %d-%d", minImages, maxImages)
	}

	switch format {
	case "":
		format = openai.CreateImageResponseFormatURL
	case openai.CreateImageResponseFormatURL, openai.CreateImageResponseFormatB64JSON:
	default:
		return 0, "", invalid("response_format", ErrInvalidResponseFormat,
			"response_format must be %q or %q", openai.CreateImageResponseFormatURL, openai.CreateImageResponseFormatB64JSON)
	}

	return n, format, nil
}

// GenerateImage creates images from a text prompt
func (c *Client) GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResult, error) {
	n, format, err := validateImageParams(req.Prompt, req.N, req.ResponseFormat)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = c.config.ImageModel
	}

	body := imageGenerationRequest{
		Model:          model,
		Prompt:         req.Prompt,
		N:              n,
		ResponseFormat: format,
		AspectRatio:    req.AspectRatio,
	}

	data, err := c.doRequest(ctx, "POST", "/images/generations", body)
	if err != nil {
		return nil, err
	}

	return c.decodeImages(ctx, data)
}

// EditImage applies a natural-language edit to up to three source images.
//
// Only the first source is transmitted: the edit endpoint takes a single
// image. The others are still validated and resolved so that a bad path
// fails early.
func (c *Client) EditImage(ctx context.Context, req *ImageEditRequest) (*ImageResult, error) {
	if req.Prompt == "" {
		return nil, invalid("prompt", ErrMissingPrompt, "prompt is required")
	}
	if len(req.Images) == 0 {
		return nil, invalid("image", ErrMissingImage, "image is required (URL or base64 data URI)")
	}
	if len(req.Images) > maxEditSources {
		return nil, invalid("image", ErrTooManyImages, "Maximum %d source images", maxEditSources)
	}

	n, format, err := validateImageParams(req.Prompt, req.N, req.ResponseFormat)
	if err != nil {
		return nil, err
	}

	resolved := make([]string, 0, len(req.Images))
	for _, src := range req.Images {
		uri, err := ResolveImageSource(src)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, uri)
	}

	if len(resolved) > 1 {
		c.logger.WithContext(ctx).Warn("edit endpoint accepts one image, extra sources dropped",
			zap.Int("supplied", len(resolved)),
		)
	}

	model := req.Model
	if model == "" {
		model = c.config.ImageModel
	}

	body := imageEditRequest{
		Model:          model,
		Image:          resolved[0],
		Prompt:         req.Prompt,
		N:              n,
		ResponseFormat: format,
	}

	data, err := c.doRequest(ctx, "POST", "/images/edits", body)
	if err != nil {
		return nil, err
	}

	return c.decodeImages(ctx, data)
}

func (c *Client) decodeImages(ctx context.Context, data []byte) (*ImageResult, error) {
	var resp imageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal image response: %w", err)
	}

	result := &ImageResult{Images: make([]GeneratedImage, 0, len(resp.Data))}
	for _, img := range resp.Data {
		result.Images = append(result.Images, GeneratedImage{
			URL:           img.URL,
			B64JSON:       img.B64JSON,
			RevisedPrompt: img.RevisedPrompt,
		})
	}

	c.logger.WithContext(ctx).Info("images returned", zap.Int("count", len(result.Images)))

	return result, nil
}

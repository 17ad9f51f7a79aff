package xai

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

const (
	maxDomains = 5
	maxHandles = 10
)

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type searchTool struct {
	Type                     string   `json:"type"`
	AllowedDomains           []string `json:"allowed_domains,omitempty"`
	ExcludedDomains          []string `json:"excluded_domains,omitempty"`
	AllowedXHandles          []string `json:"allowed_x_handles,omitempty"`
	ExcludedXHandles         []string `json:"excluded_x_handles,omitempty"`
	FromDate                 string   `json:"from_date,omitempty"`
	ToDate                   string   `json:"to_date,omitempty"`
	EnableImageUnderstanding bool     `json:"enable_image_understanding,omitempty"`
	EnableVideoUnderstanding bool     `json:"enable_video_understanding,omitempty"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Tools []searchTool   `json:"tools"`
}

// validateFilter enforces that an allow-list and a deny-list are never both
// supplied and that neither exceeds limit.
func validateFilter(allowField string, allow []string, denyField string, deny []string, limit int) error {
	if allow != nil && deny != nil {
		return invalid(allowField, ErrConflictingFilter, "Cannot use both %s and %s", allowField, denyField)
	}
	if len(allow) > limit {
		return invalid(allowField, ErrListTooLong, "Maximum %d %s", limit, allowField)
	}
	if len(deny) > limit {
		return invalid(denyField, ErrListTooLong, "Maximum %d %s", limit, denyField)
	}
	return nil
}

// SearchWeb answers a query with the web_search tool attached
func (c *Client) SearchWeb(ctx context.Context, req *SearchWebRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, invalid("query", ErrMissingQuery, "query is required")
	}
	if err := validateFilter("allowed_domains", req.AllowedDomains, "excluded_domains", req.ExcludedDomains, maxDomains); err != nil {
		return nil, err
	}

	tool := searchTool{
		Type:                     "web_search",
		AllowedDomains:           req.AllowedDomains,
		ExcludedDomains:          req.ExcludedDomains,
		EnableImageUnderstanding: req.EnableImageUnderstanding,
	}

	return c.search(ctx, req.Query, req.Model, tool)
}

// SearchX answers a query with the x_search tool attached
func (c *Client) SearchX(ctx context.Context, req *SearchXRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, invalid("query", ErrMissingQuery, "query is required")
	}
	if err := validateFilter("allowed_x_handles", req.AllowedHandles, "excluded_x_handles", req.ExcludedHandles, maxHandles); err != nil {
		return nil, err
	}

	tool := searchTool{
		Type:                     "x_search",
		AllowedXHandles:          req.AllowedHandles,
		ExcludedXHandles:         req.ExcludedHandles,
		FromDate:                 req.FromDate,
		ToDate:                   req.ToDate,
		EnableImageUnderstanding: req.EnableImageUnderstanding,
		EnableVideoUnderstanding: req.EnableVideoUnderstanding,
	}

	return c.search(ctx, req.Query, req.Model, tool)
}

func (c *Client) search(ctx context.Context, query, model string, tool searchTool) (*SearchResult, error) {
	if model == "" {
		model = c.config.SearchModel
	}

	body := responsesRequest{
		Model: model,
		Input: []inputMessage{{Role: "user", Content: query}},
		Tools: []searchTool{tool},
	}

	data, err := c.doRequest(ctx, "POST", "/responses", body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decode search response: %w", ErrEmptyResponse)
	}

	result := &SearchResult{
		Content:   lastOutputContent(data),
		Citations: citations(data),
		Usage:     usage(data),
		Raw:       json.RawMessage(data),
	}

	c.logger.WithContext(ctx).Info("search completed",
		zap.String("tool", tool.Type),
		zap.Int("citations", len(result.Citations)),
	)

	return result, nil
}

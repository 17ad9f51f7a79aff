package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lk2023060901/grok-bridge/internal/xai"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const untitled = "Untitled"

// Sources renders citations as a numbered list, one per line, each line
// prefixed with indent. Empty when there are no citations.
func Sources(citations []xai.Citation, indent string) string {
	if len(citations) == 0 {
		return ""
	}

	lines := make([]string, 0, len(citations)+1)
	lines = append(lines, "Sources:")
	for i, c := range citations {
		title := c.Title
		if title == "" {
			title = untitled
		}
		lines = append(lines, fmt.Sprintf("%s%d. %s - %s", indent, i+1, title, c.URL))
	}
	return strings.Join(lines, "\n")
}

// SearchText is the answer followed by a blank line and its sources
func SearchText(r *xai.SearchResult, indent string) string {
	if src := Sources(r.Citations, indent); src != "" {
		return r.Content + "\n\n" + src
	}
	return r.Content
}

// JSON pretty prints v with two-space indentation
func JSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("render json: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// YAML renders v as a YAML document
func YAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Write renders v in format and writes it followed by a newline
func Write(w io.Writer, format string, v any) error {
	var (
		out string
		err error
	)
	switch strings.ToLower(format) {
	case "", FormatJSON:
		out, err = JSON(v)
	case FormatYAML:
		out, err = YAML(v)
	default:
		return fmt.Errorf("unsupported format %q, want %s or %s", format, FormatJSON, FormatYAML)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

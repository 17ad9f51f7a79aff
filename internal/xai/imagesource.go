package xai

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveImageSource turns a local file path into an inline data URI.
// Remote URLs and data URIs are returned unchanged.
func ResolveImageSource(src string) (string, error) {
	if strings.HasPrefix(src, "http") || strings.HasPrefix(src, "data:") {
		return src, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", src, err)
	}

	return "data:" + ImageMIMEType(src) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ImageMIMEType maps a file extension to the MIME type sent upstream.
// Anything that is not png or webp is sent as jpeg.
func ImageMIMEType(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

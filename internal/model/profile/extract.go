package profile

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Extractor turns an uploaded resume payload into plain text.
// Concrete document parsers (PDF, DOCX) plug in behind this interface.
type Extractor interface {
	Extract(data []byte, filename, contentType string) (string, error)
}

// TextExtractor handles plain-text uploads.
type TextExtractor struct{}

// Extract validates the payload is UTF-8 text and normalizes whitespace.
func (TextExtractor) Extract(data []byte, filename, contentType string) (string, error) {
	if !supportedTextType(contentType, filename) {
		return "", fmt.Errorf("unsupported resume content type: %s", contentType)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("resume file is not valid UTF-8 text")
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimSpace(text), nil
}

func supportedTextType(contentType, filename string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	switch contentType {
	case "text/plain", "text/markdown", "application/octet-stream", "":
	default:
		return false
	}

	name := strings.ToLower(filename)
	if contentType == "application/octet-stream" || contentType == "" {
		return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".md")
	}
	return true
}

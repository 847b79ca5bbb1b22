package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"quill/internal/domain/services"
)

// textExtractor decodes plain text uploads as UTF-8.
type textExtractor struct{}

// NewTextExtractor creates the plain text extractor.
func NewTextExtractor() FormatExtractor {
	return &textExtractor{}
}

// Extract returns content as a string. A UTF-8 byte order mark is dropped and
// invalid sequences are replaced with U+FFFD.
func (e *textExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	text := strings.TrimPrefix(string(content), "\ufeff")
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\ufffd")
	}
	return text, nil
}

func (e *textExtractor) MediaTypes() []string {
	return []string{services.MediaTypeText}
}

func (e *textExtractor) Name() string {
	return "plaintext"
}

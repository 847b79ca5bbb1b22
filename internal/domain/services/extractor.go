package services

import "context"

// Media types accepted for upload
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOC  = "application/msword"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText = "text/plain"
)

// TextExtractor turns an uploaded document into plain text.
//
// Unknown media types fail with domain.ErrUnsupportedFormat without looking at
// the content. Parser failures are wrapped in domain.ErrExtractionFailed.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, mediaType string) (string, error)

	// Supports reports whether mediaType (parameters allowed) has an extractor
	Supports(mediaType string) bool
}

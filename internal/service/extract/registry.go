package extract

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"sync"

	"quill/internal/domain"
	"quill/internal/domain/services"
)

// FormatExtractor extracts text from one family of document formats.
// Implementations should be stateless and thread-safe.
type FormatExtractor interface {
	// Extract returns the plain text of content
	Extract(ctx context.Context, content []byte) (string, error)

	// MediaTypes returns the declared media types this extractor handles
	MediaTypes() []string

	// Name returns a human-readable extractor name for logging
	Name() string
}

// Registry routes uploads to a FormatExtractor by declared media type.
// Content is never sniffed: an undeclared or unknown type is unsupported.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]FormatExtractor // key: media type without parameters
}

var _ services.TextExtractor = (*Registry)(nil)

// NewRegistry creates a registry with the PDF, DOC, DOCX and plain text extractors.
func NewRegistry() *Registry {
	registry := &Registry{
		extractors: make(map[string]FormatExtractor),
	}

	registry.Register(NewTextExtractor())
	registry.Register(NewPDFExtractor())
	registry.Register(NewDocxExtractor())
	registry.Register(NewDocExtractor())

	return registry
}

// Register associates an extractor with its media types, replacing earlier registrations.
func (r *Registry) Register(extractor FormatExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mediaType := range extractor.MediaTypes() {
		r.extractors[strings.ToLower(mediaType)] = extractor
	}
}

// lookup returns the extractor for a declared media type, or nil
func (r *Registry) lookup(mediaType string) FormatExtractor {
	base := NormalizeMediaType(mediaType)
	if base == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extractors[base]
}

// Supports reports whether an extractor is registered for mediaType
func (r *Registry) Supports(mediaType string) bool {
	return r.lookup(mediaType) != nil
}

// Extract selects the extractor for mediaType and runs it.
func (r *Registry) Extract(ctx context.Context, content []byte, mediaType string) (string, error) {
	extractor := r.lookup(mediaType)
	if extractor == nil {
		return "", fmt.Errorf("%w: %q (allowed: PDF, DOC, DOCX, TXT)", domain.ErrUnsupportedFormat, mediaType)
	}

	text, err := extractor.Extract(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, extractor.Name(), err)
	}
	return text, nil
}

// MediaTypes returns all registered media types.
func (r *Registry) MediaTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.extractors))
	for mediaType := range r.extractors {
		types = append(types, mediaType)
	}
	return types
}

// NormalizeMediaType lowercases a media type and strips its parameters.
// Returns "" for an unparsable value.
func NormalizeMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	base, _, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	return strings.ToLower(base)
}

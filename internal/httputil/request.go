package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"quill/internal/domain"
)

// multipartOverhead is the allowance for form fields and part headers on top of the file limit
const multipartOverhead = 1 << 20

// extensionMediaTypes is used only when the client declares no usable type for a file part
var extensionMediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// UploadedFile is a file part read fully into memory
type UploadedFile struct {
	Filename  string
	MediaType string
	Content   []byte
}

// ParseUpload parses a multipart request and reads the file in field.
// A missing file part returns (nil, nil) so required-field validation can report it
// alongside the other fields. A file larger than maxFileBytes is a ValidationError.
func ParseUpload(w http.ResponseWriter, r *http.Request, field string, maxFileBytes int64) (*UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge(field, maxFileBytes)
		}
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid multipart form: %v", err)}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, &domain.ValidationError{Message: fmt.Sprintf("read %s: %v", field, err)}
	}
	defer file.Close()

	if header.Size > maxFileBytes {
		return nil, tooLarge(field, maxFileBytes)
	}

	content, err := io.ReadAll(io.LimitReader(file, maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if int64(len(content)) > maxFileBytes {
		return nil, tooLarge(field, maxFileBytes)
	}

	return &UploadedFile{
		Filename:  header.Filename,
		MediaType: declaredMediaType(header.Header.Get("Content-Type"), header.Filename),
		Content:   content,
	}, nil
}

// declaredMediaType returns the part's Content-Type, falling back to the
// file extension when the client sent none or only application/octet-stream.
func declaredMediaType(contentType, filename string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType != "" && !strings.HasPrefix(contentType, "application/octet-stream") {
		return contentType
	}
	if mediaType, ok := extensionMediaTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mediaType
	}
	return contentType
}

func tooLarge(field string, limit int64) error {
	return domain.NewFieldError(field, fmt.Sprintf("must not exceed %d bytes", limit))
}

package services

import "context"

// FileArchiver keeps a copy of the original upload.
// Archive returns the storage key, or "" when archiving is disabled.
type FileArchiver interface {
	Archive(ctx context.Context, key, contentType string, data []byte) (string, error)
}

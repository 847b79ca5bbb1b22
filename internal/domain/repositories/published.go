package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// PublishedRepository stores public entries created on acceptance
type PublishedRepository interface {
	// Create inserts an entry; a duplicate public URL is a *domain.ConflictError
	Create(ctx context.Context, entry *models.PublishedEntry) error

	// GetByID resolves the entry by its own id or by the id of the submission that produced it
	GetByID(ctx context.Context, id string) (*models.PublishedEntry, error)

	// List returns summaries ordered by publication time, newest first
	List(ctx context.Context, opts models.ListOptions) ([]models.PublishedSummary, error)

	// Contents returns the full text of every entry, used as the local plagiarism corpus
	Contents(ctx context.Context) ([]string, error)
}

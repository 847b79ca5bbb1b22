package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// SubmissionRepository stores the audit trail of upload attempts
type SubmissionRepository interface {
	// Create inserts a new pending submission
	Create(ctx context.Context, sub *models.Submission) error

	// GetByID returns domain.ErrNotFound when no submission has the id
	GetByID(ctx context.Context, id string) (*models.Submission, error)

	// SaveTransition persists a terminal status change made on sub.
	// The write only applies while the stored row is still pending; otherwise
	// it returns a *domain.ConflictError (or domain.ErrNotFound if the row is gone).
	SaveTransition(ctx context.Context, sub *models.Submission) error
}

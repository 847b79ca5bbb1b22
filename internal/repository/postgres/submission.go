package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresSubmissionRepository implements the SubmissionRepository interface
type PostgresSubmissionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(config *RepositoryConfig) repositories.SubmissionRepository {
	return &PostgresSubmissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const submissionColumns = `id, author_name, email, category, title, original_filename, file_key,
	content, word_count, status, rejection_reason, is_plagiarized, similarity,
	published_at, public_url, created_at, updated_at`

// Create inserts a new pending submission
func (r *PostgresSubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, r.tables.Submissions, submissionColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		sub.ID,
		sub.AuthorName,
		sub.Email,
		sub.Category,
		sub.Title,
		sub.OriginalFilename,
		sub.FileKey,
		sub.Content,
		sub.WordCount,
		sub.Status,
		sub.RejectionReason,
		sub.IsPlagiarized,
		sub.Similarity,
		sub.PublishedAt,
		sub.PublicURL,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("submission %s already exists", sub.ID),
				ResourceType: "submission",
				ResourceID:   sub.ID,
			}
		}
		return fmt.Errorf("create submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission by ID
func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, submissionColumns, r.tables.Submissions)

	var sub models.Submission
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.AuthorName,
		&sub.Email,
		&sub.Category,
		&sub.Title,
		&sub.OriginalFilename,
		&sub.FileKey,
		&sub.Content,
		&sub.WordCount,
		&sub.Status,
		&sub.RejectionReason,
		&sub.IsPlagiarized,
		&sub.Similarity,
		&sub.PublishedAt,
		&sub.PublicURL,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return &sub, nil
}

// SaveTransition writes the terminal state of sub. The row must still be pending.
func (r *PostgresSubmissionRepository) SaveTransition(ctx context.Context, sub *models.Submission) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2,
		    rejection_reason = $3,
		    is_plagiarized = $4,
		    similarity = $5,
		    published_at = $6,
		    public_url = $7,
		    updated_at = $8
		WHERE id = $1 AND status = $9
	`, r.tables.Submissions)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		sub.ID,
		sub.Status,
		sub.RejectionReason,
		sub.IsPlagiarized,
		sub.Similarity,
		sub.PublishedAt,
		sub.PublicURL,
		sub.UpdatedAt,
		models.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("save submission transition: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: the row is gone or already terminal
	var current models.SubmissionStatus
	statusQuery := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1`, r.tables.Submissions)
	if err := executor.QueryRow(ctx, statusQuery, sub.ID).Scan(&current); err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("submission %s: %w", sub.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("get submission status: %w", err)
	}

	return &domain.ConflictError{
		Message:      fmt.Sprintf("submission %s is already %s", sub.ID, current),
		ResourceType: "submission",
		ResourceID:   sub.ID,
	}
}

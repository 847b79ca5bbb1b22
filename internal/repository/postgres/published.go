package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresPublishedRepository implements the PublishedRepository interface
type PostgresPublishedRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	psql   sq.StatementBuilderType
}

// NewPublishedRepository creates a new published entry repository
func NewPublishedRepository(config *RepositoryConfig) repositories.PublishedRepository {
	return &PostgresPublishedRepository{
		pool:   config.Pool,
		tables: config.Tables,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a published entry
func (r *PostgresPublishedRepository) Create(ctx context.Context, entry *models.PublishedEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, submission_id, author_name, email, category, title, content,
			word_count, published_at, public_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.Published)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		entry.ID,
		entry.SubmissionID,
		entry.AuthorName,
		entry.Email,
		entry.Category,
		entry.Title,
		entry.Content,
		entry.WordCount,
		entry.PublishedAt,
		entry.PublicURL,
		entry.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("an entry already exists at %s", entry.PublicURL),
				ResourceType: "published_entry",
				ResourceID:   entry.SubmissionID,
			}
		}
		return fmt.Errorf("create published entry: %w", err)
	}

	return nil
}

// GetByID resolves an entry by its own id or its submission id
func (r *PostgresPublishedRepository) GetByID(ctx context.Context, id string) (*models.PublishedEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("published entry %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT id, submission_id, author_name, email, category, title, content,
			word_count, published_at, public_url, created_at
		FROM %s
		WHERE id = $1 OR submission_id = $1
		LIMIT 1
	`, r.tables.Published)

	var entry models.PublishedEntry
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.SubmissionID,
		&entry.AuthorName,
		&entry.Email,
		&entry.Category,
		&entry.Title,
		&entry.Content,
		&entry.WordCount,
		&entry.PublishedAt,
		&entry.PublicURL,
		&entry.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("published entry %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get published entry: %w", err)
	}

	return &entry, nil
}

// List returns summaries newest first, optionally filtered by category
func (r *PostgresPublishedRepository) List(ctx context.Context, opts models.ListOptions) ([]models.PublishedSummary, error) {
	query, args, err := r.listQuery(opts)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list published entries: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.PublishedSummary, 0)
	for rows.Next() {
		var s models.PublishedSummary
		if err := rows.Scan(
			&s.ID,
			&s.AuthorName,
			&s.Category,
			&s.Title,
			&s.Content,
			&s.PublishedAt,
			&s.PublicURL,
			&s.WordCount,
		); err != nil {
			return nil, fmt.Errorf("scan published entry: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate published entries: %w", err)
	}

	return summaries, nil
}

func (r *PostgresPublishedRepository) listQuery(opts models.ListOptions) (string, []any, error) {
	builder := r.psql.
		Select("id", "author_name", "category", "title", "content", "published_at", "public_url", "word_count").
		From(r.tables.Published).
		OrderBy("published_at DESC", "created_at DESC", "id DESC")

	if opts.Category != "" {
		builder = builder.Where(sq.Eq{"category": opts.Category})
	}
	if opts.Limit > 0 {
		builder = builder.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		builder = builder.Offset(uint64(opts.Offset))
	}

	return builder.ToSql()
}

// Contents returns the text of every published entry
func (r *PostgresPublishedRepository) Contents(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT content FROM %s`, r.tables.Published)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list published content: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan published content: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate published content: %w", err)
	}

	return contents, nil
}

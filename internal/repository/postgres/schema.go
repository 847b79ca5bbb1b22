package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the submission and published-entry tables if missing
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, stmt := range schemaStatements(tables) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// schemaStatements returns the DDL in execution order. Published entries carry
// no foreign key to their submission.
func schemaStatements(tables *TableNames) []string {
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id                UUID PRIMARY KEY,
				author_name       TEXT NOT NULL,
				email             TEXT NOT NULL,
				category          TEXT NOT NULL,
				title             TEXT NOT NULL,
				original_filename TEXT NOT NULL,
				file_key          TEXT NOT NULL DEFAULT '',
				content           TEXT NOT NULL DEFAULT '',
				word_count        INTEGER NOT NULL DEFAULT 0 CHECK (word_count >= 0),
				status            TEXT NOT NULL CHECK (status IN ('pending', 'rejected', 'published')),
				rejection_reason  TEXT NOT NULL DEFAULT '',
				is_plagiarized    BOOLEAN NOT NULL DEFAULT FALSE,
				similarity        DOUBLE PRECISION,
				published_at      TIMESTAMPTZ,
				public_url        TEXT NOT NULL DEFAULT '',
				created_at        TIMESTAMPTZ NOT NULL,
				updated_at        TIMESTAMPTZ NOT NULL
			)`, tables.Submissions),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            UUID PRIMARY KEY,
				submission_id UUID NOT NULL UNIQUE,
				author_name   TEXT NOT NULL,
				email         TEXT NOT NULL,
				category      TEXT NOT NULL,
				title         TEXT NOT NULL,
				content       TEXT NOT NULL,
				word_count    INTEGER NOT NULL,
				published_at  TIMESTAMPTZ NOT NULL,
				public_url    TEXT NOT NULL UNIQUE,
				created_at    TIMESTAMPTZ NOT NULL
			)`, tables.Published),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_listing_idx ON %s (published_at DESC, created_at DESC, id DESC)`,
			tables.Published, tables.Published),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_category_idx ON %s (category)`,
			tables.Published, tables.Published),
	}
}

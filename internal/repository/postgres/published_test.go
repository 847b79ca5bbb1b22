package postgres

import (
	"reflect"
	"strings"
	"testing"

	"quill/internal/domain/models"
)

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("test_")
	if tables.Submissions != "test_submissions" {
		t.Errorf("Submissions = %q", tables.Submissions)
	}
	if tables.Published != "test_published_entries" {
		t.Errorf("Published = %q", tables.Published)
	}
}

func TestSchemaStatements(t *testing.T) {
	statements := schemaStatements(NewTableNames("test_"))
	if len(statements) < 2 {
		t.Fatalf("schemaStatements() returned %d statements", len(statements))
	}

	published := statements[1]
	if !strings.Contains(published, "test_published_entries") {
		t.Fatalf("second statement should create the published table: %s", published)
	}
	if strings.Contains(published, "REFERENCES") {
		t.Errorf("published table should not reference submissions: %s", published)
	}
	if !strings.Contains(published, "submission_id UUID NOT NULL UNIQUE") {
		t.Errorf("published table should keep submission_id unique: %s", published)
	}
}

func TestPublishedRepository_ListQuery(t *testing.T) {
	repo := NewPublishedRepository(&RepositoryConfig{Tables: NewTableNames("dev_")}).(*PostgresPublishedRepository)

	tests := []struct {
		name      string
		opts      models.ListOptions
		wantParts []string
		wantArgs  []any
	}{
		{
			name:      "no filters",
			opts:      models.ListOptions{},
			wantParts: []string{"FROM dev_published_entries", "ORDER BY published_at DESC, created_at DESC, id DESC"},
			wantArgs:  nil,
		},
		{
			name:      "category filter",
			opts:      models.ListOptions{Category: "tech"},
			wantParts: []string{"WHERE category = $1"},
			wantArgs:  []any{"tech"},
		},
		{
			name:      "paging",
			opts:      models.ListOptions{Limit: 10, Offset: 20},
			wantParts: []string{"LIMIT 10", "OFFSET 20"},
			wantArgs:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := repo.listQuery(tt.opts)
			if err != nil {
				t.Fatalf("listQuery() unexpected error: %v", err)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(query, part) {
					t.Errorf("query %q missing %q", query, part)
				}
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
			if tt.opts.Limit == 0 && strings.Contains(query, "LIMIT") {
				t.Errorf("query %q should not limit", query)
			}
		})
	}
}

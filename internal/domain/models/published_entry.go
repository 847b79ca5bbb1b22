package models

import (
	"strings"
	"time"

	"quill/internal/domain"
)

// PublishedEntry is the listing-optimized projection of a published submission.
// It duplicates author and content fields on purpose so listing reads never
// join back to the submissions table.
type PublishedEntry struct {
	ID           string    `json:"id" db:"id"`
	SubmissionID string    `json:"submissionId" db:"submission_id"`
	AuthorName   string    `json:"authorName" db:"author_name"`
	Email        string    `json:"email" db:"email"`
	Category     string    `json:"category" db:"category"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	WordCount    int       `json:"wordCount" db:"word_count"`
	PublishedAt  time.Time `json:"publishedAt" db:"published_at"`
	PublicURL    string    `json:"publicUrl" db:"public_url"` // Unique per entry
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// PublishedSummary is the fixed field projection returned by listings
type PublishedSummary struct {
	ID          string    `json:"id" db:"id"`
	AuthorName  string    `json:"authorName" db:"author_name"`
	Category    string    `json:"category" db:"category"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"`
	PublishedAt time.Time `json:"publishedAt" db:"published_at"`
	PublicURL   string    `json:"publicUrl" db:"public_url"`
	WordCount   int       `json:"wordCount" db:"word_count"`
}

// NewPublishedEntry builds the entry for a pending submission that is about to be published.
// The submission itself is not modified.
func NewPublishedEntry(id string, sub *Submission, publicURL string, now time.Time) (*PublishedEntry, error) {
	if sub.Status != StatusPending {
		return nil, sub.checkPending()
	}
	if strings.TrimSpace(publicURL) == "" {
		return nil, domain.NewFieldError("publicUrl", "cannot be blank")
	}

	return &PublishedEntry{
		ID:           id,
		SubmissionID: sub.ID,
		AuthorName:   sub.AuthorName,
		Email:        sub.Email,
		Category:     sub.Category,
		Title:        sub.Title,
		Content:      sub.Content,
		WordCount:    sub.WordCount,
		PublishedAt:  now,
		PublicURL:    publicURL,
		CreatedAt:    now,
	}, nil
}

// Summary returns the listing projection of the entry
func (e *PublishedEntry) Summary() PublishedSummary {
	return PublishedSummary{
		ID:          e.ID,
		AuthorName:  e.AuthorName,
		Category:    e.Category,
		Title:       e.Title,
		Content:     e.Content,
		PublishedAt: e.PublishedAt,
		PublicURL:   e.PublicURL,
		WordCount:   e.WordCount,
	}
}

// ListOptions filters and pages published-entry listings.
// Zero Limit means no limit.
type ListOptions struct {
	Category string
	Limit    int
	Offset   int
}

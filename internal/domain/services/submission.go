package services

import (
	"context"

	"quill/internal/domain/models"
)

// SubmissionService runs the submission workflow and serves published entries
type SubmissionService interface {
	// Submit validates, extracts, checks and either rejects or publishes an upload.
	// Rejections are a normal result (Outcome != OutcomePublished), not an error.
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error)

	// Publish moves an existing pending submission to published without re-running checks
	Publish(ctx context.Context, submissionID string) (*models.PublishedEntry, error)

	// ListPublished returns published summaries, newest first
	ListPublished(ctx context.Context, opts models.ListOptions) ([]models.PublishedSummary, error)

	// GetPublished returns one entry by entry id or submission id
	GetPublished(ctx context.Context, id string) (*models.PublishedEntry, error)
}

// UploadedFile is the file part of a submission
type UploadedFile struct {
	Filename  string
	MediaType string // Declared media type, parameters allowed
	Content   []byte
}

// SubmitRequest represents a blog submission
type SubmitRequest struct {
	AuthorName string        `json:"authorName"`
	Email      string        `json:"email"`
	Category   string        `json:"category"`
	Title      string        `json:"title"`
	File       *UploadedFile `json:"blogFile"`
}

// Outcome is the terminal result of the pipeline
type Outcome string

const (
	OutcomePublished          Outcome = "published"
	OutcomeRejectedWordCount  Outcome = "rejected_word_count"
	OutcomeRejectedPlagiarism Outcome = "rejected_plagiarism"
)

// SubmitResult describes how a submission ended
type SubmitResult struct {
	Outcome       Outcome
	Submission    *models.Submission
	Entry         *models.PublishedEntry // Nil unless published
	WordCount     int
	MinWordCount  int
	IsPlagiarized bool
	Similarity    *float64 // Only for plagiarism rejections
}

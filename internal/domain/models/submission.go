package models

import (
	"fmt"
	"strings"
	"time"

	"quill/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SubmissionStatus is the lifecycle state of a submission.
// pending is the only non-terminal state.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusRejected  SubmissionStatus = "rejected"
	StatusPublished SubmissionStatus = "published"
)

// Valid reports whether s is one of the known statuses
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRejected, StatusPublished:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s
func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusPublished
}

// RejectionReason explains why a submission was rejected
type RejectionReason string

const (
	ReasonWordCount  RejectionReason = "word count below minimum"
	ReasonPlagiarism RejectionReason = "plagiarized content"
)

// Submission is the audit record of one upload attempt.
// It is retained whatever the outcome.
type Submission struct {
	ID               string           `json:"id" db:"id"`
	AuthorName       string           `json:"authorName" db:"author_name"`
	Email            string           `json:"email" db:"email"`
	Category         string           `json:"category" db:"category"`
	Title            string           `json:"title" db:"title"`
	OriginalFilename string           `json:"blogFile" db:"original_filename"`
	FileKey          string           `json:"fileKey,omitempty" db:"file_key"` // Archive object key, empty when not archived
	Content          string           `json:"content" db:"content"`
	WordCount        int              `json:"wordCount" db:"word_count"`
	Status           SubmissionStatus `json:"status" db:"status"`
	RejectionReason  RejectionReason  `json:"rejectionReason,omitempty" db:"rejection_reason"`
	IsPlagiarized    bool             `json:"isPlagiarized" db:"is_plagiarized"`
	Similarity       *float64         `json:"similarity,omitempty" db:"similarity"` // Only set for plagiarism rejections
	PublishedAt      *time.Time       `json:"publishedAt,omitempty" db:"published_at"`
	PublicURL        string           `json:"publicUrl,omitempty" db:"public_url"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
}

// SubmissionParams holds the inputs required to open a submission
type SubmissionParams struct {
	ID               string `json:"id"`
	AuthorName       string `json:"authorName"`
	Email            string `json:"email"`
	Category         string `json:"category"`
	Title            string `json:"title"`
	OriginalFilename string `json:"blogFile"`
	FileKey          string `json:"fileKey"`
	Content          string `json:"content"`
	WordCount        int    `json:"wordCount"`
}

// NewSubmission validates params and returns a pending submission stamped with now.
func NewSubmission(params SubmissionParams, now time.Time) (*Submission, error) {
	params.AuthorName = strings.TrimSpace(params.AuthorName)
	params.Email = strings.TrimSpace(params.Email)
	params.Category = strings.TrimSpace(params.Category)
	params.Title = strings.TrimSpace(params.Title)

	err := validation.ValidateStruct(&params,
		validation.Field(&params.ID, validation.Required),
		validation.Field(&params.AuthorName, validation.Required),
		validation.Field(&params.Email, validation.Required),
		validation.Field(&params.Category, validation.Required),
		validation.Field(&params.Title, validation.Required),
		validation.Field(&params.OriginalFilename, validation.Required),
		validation.Field(&params.WordCount, validation.Min(0)),
	)
	if err != nil {
		return nil, domain.NewValidationError("invalid submission", err)
	}

	return &Submission{
		ID:               params.ID,
		AuthorName:       params.AuthorName,
		Email:            params.Email,
		Category:         params.Category,
		Title:            params.Title,
		OriginalFilename: params.OriginalFilename,
		FileKey:          params.FileKey,
		Content:          params.Content,
		WordCount:        params.WordCount,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Reject moves a pending submission to rejected.
// similarity is recorded only for plagiarism rejections.
func (s *Submission) Reject(reason RejectionReason, similarity *float64, now time.Time) error {
	if err := s.checkPending(); err != nil {
		return err
	}

	s.Status = StatusRejected
	s.RejectionReason = reason
	if reason == ReasonPlagiarism {
		s.IsPlagiarized = true
		s.Similarity = similarity
	}
	s.UpdatedAt = now
	return nil
}

// Publish moves a pending submission to published with the given public URL.
func (s *Submission) Publish(publicURL string, now time.Time) error {
	if err := s.checkPending(); err != nil {
		return err
	}
	if strings.TrimSpace(publicURL) == "" {
		return domain.NewFieldError("publicUrl", "cannot be blank")
	}

	s.Status = StatusPublished
	s.PublicURL = publicURL
	publishedAt := now
	s.PublishedAt = &publishedAt
	s.UpdatedAt = now
	return nil
}

func (s *Submission) checkPending() error {
	if s.Status == StatusPending {
		return nil
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("submission %s is already %s", s.ID, s.Status),
		ResourceType: "submission",
		ResourceID:   s.ID,
	}
}

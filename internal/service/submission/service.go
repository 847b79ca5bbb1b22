package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
	"quill/internal/metrics"
	"quill/internal/service/archive"
	"quill/internal/utils"
)

// outcomeFailed labels pipeline runs that ended in an error
const outcomeFailed = "failed"

// Dependencies are the collaborators of the submission service
type Dependencies struct {
	Submissions repositories.SubmissionRepository
	Published   repositories.PublishedRepository
	TxManager   repositories.TransactionManager
	Extractor   services.TextExtractor
	Checker     services.PlagiarismChecker
	Notifier    services.Notifier
	Archiver    services.FileArchiver
	Metrics     *metrics.Metrics // Optional
	Logger      *slog.Logger
}

// Settings holds the submission policy
type Settings struct {
	MinWordCount  int
	PublicBaseURL string // Scheme and host, no trailing slash
	PublicPath    string // Path prefix of public entry URLs
}

// submissionService implements the SubmissionService interface
type submissionService struct {
	Dependencies
	settings Settings
	now      func() time.Time
}

// NewService creates the submission service
func NewService(deps Dependencies, settings Settings) services.SubmissionService {
	if settings.MinWordCount <= 0 {
		settings.MinWordCount = config.DefaultMinWordCount
	}
	if deps.Archiver == nil {
		deps.Archiver = archive.Disabled{}
	}
	settings.PublicBaseURL = strings.TrimRight(settings.PublicBaseURL, "/")
	settings.PublicPath = "/" + strings.Trim(settings.PublicPath, "/")

	return &submissionService{
		Dependencies: deps,
		settings:     settings,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit runs the pipeline: validate, extract, count, check, then reject or publish.
func (s *submissionService) Submit(ctx context.Context, req *services.SubmitRequest) (*services.SubmitResult, error) {
	started := time.Now()

	result, err := s.submit(ctx, req)

	outcome := outcomeFailed
	if err == nil {
		outcome = string(result.Outcome)
	}
	s.Metrics.ObserveSubmission(outcome, started)

	return result, err
}

func (s *submissionService) submit(ctx context.Context, req *services.SubmitRequest) (*services.SubmitResult, error) {
	req = normalizeRequest(req)
	if err := s.validateSubmitRequest(req); err != nil {
		return nil, err
	}

	// Nothing is persisted until the upload has been turned into text
	if !s.Extractor.Supports(req.File.MediaType) {
		return nil, fmt.Errorf("%w: %q (allowed: PDF, DOC, DOCX, TXT)", domain.ErrUnsupportedFormat, req.File.MediaType)
	}
	text, err := s.Extractor.Extract(ctx, req.File.Content, req.File.MediaType)
	if err != nil {
		return nil, err
	}
	wordCount := utils.CountWords(text)

	id := uuid.NewString()
	fileKey := s.archiveUpload(ctx, id, req.File)

	sub, err := models.NewSubmission(models.SubmissionParams{
		ID:               id,
		AuthorName:       req.AuthorName,
		Email:            req.Email,
		Category:         req.Category,
		Title:            req.Title,
		OriginalFilename: req.File.Filename,
		FileKey:          fileKey,
		Content:          text,
		WordCount:        wordCount,
	}, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Submissions.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Info("submission received",
		"id", sub.ID,
		"category", sub.Category,
		"media_type", req.File.MediaType,
		"word_count", wordCount,
	)

	result := &services.SubmitResult{
		Submission:   sub,
		WordCount:    wordCount,
		MinWordCount: s.settings.MinWordCount,
	}
	to := services.Recipient{Email: sub.Email, AuthorName: sub.AuthorName}

	if wordCount < s.settings.MinWordCount {
		if err := s.reject(ctx, sub, models.ReasonWordCount, nil); err != nil {
			return nil, err
		}
		s.Notifier.WordCountRejected(ctx, to, wordCount, s.settings.MinWordCount)

		result.Outcome = services.OutcomeRejectedWordCount
		return result, nil
	}

	verdict, err := s.Checker.Check(ctx, text)
	if err != nil {
		// The submission stays pending and can be published later
		s.Logger.Error("plagiarism check failed",
			"id", sub.ID,
			"checker", s.Checker.Name(),
			"error", err,
		)
		if !errors.Is(err, domain.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		return nil, fmt.Errorf("plagiarism check: %w", err)
	}

	s.Logger.Debug("plagiarism check complete",
		"id", sub.ID,
		"checker", s.Checker.Name(),
		"is_plagiarized", verdict.IsPlagiarized,
		"similarity", verdict.Similarity,
	)

	if verdict.IsPlagiarized {
		similarity := verdict.Similarity
		if err := s.reject(ctx, sub, models.ReasonPlagiarism, &similarity); err != nil {
			return nil, err
		}
		s.Notifier.PlagiarismRejected(ctx, to, similarity)

		result.Outcome = services.OutcomeRejectedPlagiarism
		result.IsPlagiarized = true
		result.Similarity = &similarity
		return result, nil
	}

	entry, err := s.publish(ctx, sub)
	if err != nil {
		return nil, err
	}

	result.Outcome = services.OutcomePublished
	result.Entry = entry
	return result, nil
}

// Publish moves a pending submission to published without re-running the checks
func (s *submissionService) Publish(ctx context.Context, submissionID string) (*models.PublishedEntry, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return nil, fmt.Errorf("submission: %w", domain.ErrNotFound)
	}

	sub, err := s.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	return s.publish(ctx, sub)
}

// ListPublished returns published summaries, newest first
func (s *submissionService) ListPublished(ctx context.Context, opts models.ListOptions) ([]models.PublishedSummary, error) {
	opts.Category = strings.TrimSpace(opts.Category)

	err := validation.ValidateStruct(&opts,
		validation.Field(&opts.Limit, validation.Min(0), validation.Max(config.MaxListLimit)),
		validation.Field(&opts.Offset, validation.Min(0)),
	)
	if err != nil {
		return nil, domain.NewValidationError("invalid listing options", err)
	}

	return s.Published.List(ctx, opts)
}

// GetPublished returns a single entry by entry id or submission id
func (s *submissionService) GetPublished(ctx context.Context, id string) (*models.PublishedEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("published entry: %w", domain.ErrNotFound)
	}
	return s.Published.GetByID(ctx, id)
}

// reject persists the rejection of a pending submission
func (s *submissionService) reject(ctx context.Context, sub *models.Submission, reason models.RejectionReason, similarity *float64) error {
	updated := *sub
	if err := updated.Reject(reason, similarity, s.now()); err != nil {
		return err
	}
	if err := s.Submissions.SaveTransition(ctx, &updated); err != nil {
		return err
	}
	*sub = updated

	s.Logger.Info("submission rejected",
		"id", sub.ID,
		"reason", reason,
		"word_count", sub.WordCount,
	)
	return nil
}

// publish creates the published entry and marks the submission published in one
// transaction, then sends the confirmation.
func (s *submissionService) publish(ctx context.Context, sub *models.Submission) (*models.PublishedEntry, error) {
	now := s.now()
	publicURL := s.publicURL(sub.ID)

	entry, err := models.NewPublishedEntry(uuid.NewString(), sub, publicURL, now)
	if err != nil {
		return nil, err
	}

	updated := *sub
	if err := updated.Publish(publicURL, now); err != nil {
		return nil, err
	}

	err = s.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.Published.Create(txCtx, entry); err != nil {
			return err
		}
		return s.Submissions.SaveTransition(txCtx, &updated)
	})
	if err != nil {
		return nil, err
	}
	*sub = updated

	s.Logger.Info("submission published",
		"id", sub.ID,
		"entry_id", entry.ID,
		"public_url", publicURL,
	)

	s.Notifier.Published(ctx, services.Recipient{Email: sub.Email, AuthorName: sub.AuthorName}, publicURL)
	return entry, nil
}

func (s *submissionService) publicURL(id string) string {
	return s.settings.PublicBaseURL + s.settings.PublicPath + "/" + id
}

// archiveUpload stores the original file and returns its key, or "" when
// archiving is disabled or fails.
func (s *submissionService) archiveUpload(ctx context.Context, id string, file *services.UploadedFile) string {
	key, err := s.Archiver.Archive(ctx, archive.ObjectKey(id, file.Filename), file.MediaType, file.Content)
	if err != nil {
		s.Logger.Warn("failed to archive upload",
			"id", id,
			"filename", file.Filename,
			"error", err,
		)
		return ""
	}
	return key
}

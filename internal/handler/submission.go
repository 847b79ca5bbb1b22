package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"quill/internal/domain/models"
	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// uploadField is the multipart field holding the document
const uploadField = "blogFile"

// SubmissionHandler handles blog submission HTTP requests
type SubmissionHandler struct {
	service        services.SubmissionService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(service services.SubmissionService, maxUploadBytes int64, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// SubmitResponse is returned when a submission is published
type SubmitResponse struct {
	Message       string                 `json:"message"`
	BlogID        string                 `json:"blogId"`
	WordCount     int                    `json:"wordCount"`
	IsPlagiarized bool                   `json:"isPlagiarized"`
	PublishedURL  string                 `json:"publishedUrl"`
	Blog          *models.PublishedEntry `json:"blog"`
}

// RejectionResponse is returned when a submission is rejected
type RejectionResponse struct {
	Message       string   `json:"message"`
	BlogID        string   `json:"blogId"`
	Reason        string   `json:"reason"`
	WordCount     int      `json:"wordCount"`
	IsPlagiarized bool     `json:"isPlagiarized"`
	Similarity    *float64 `json:"similarity,omitempty"`
}

// Submit runs the submission pipeline on an uploaded document.
// POST /submit (multipart: authorName, email, category, title, blogFile)
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	file, err := httputil.ParseUpload(w, r, uploadField, h.maxUploadBytes)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	req := &services.SubmitRequest{
		AuthorName: r.FormValue("authorName"),
		Email:      r.FormValue("email"),
		Category:   r.FormValue("category"),
		Title:      r.FormValue("title"),
	}
	if file != nil {
		req.File = &services.UploadedFile{
			Filename:  file.Filename,
			MediaType: file.MediaType,
			Content:   file.Content,
		}
	}

	result, err := h.service.Submit(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	switch result.Outcome {
	case services.OutcomePublished:
		httputil.RespondJSON(w, http.StatusCreated, SubmitResponse{
			Message:       "Blog published successfully",
			BlogID:        result.Submission.ID,
			WordCount:     result.WordCount,
			IsPlagiarized: false,
			PublishedURL:  result.Entry.PublicURL,
			Blog:          result.Entry,
		})
	case services.OutcomeRejectedWordCount:
		httputil.RespondJSON(w, http.StatusBadRequest, RejectionResponse{
			Message:   fmt.Sprintf("Blog rejected: Word count less than %d", result.MinWordCount),
			BlogID:    result.Submission.ID,
			Reason:    string(models.ReasonWordCount),
			WordCount: result.WordCount,
		})
	case services.OutcomeRejectedPlagiarism:
		httputil.RespondJSON(w, http.StatusBadRequest, RejectionResponse{
			Message:       "Blog rejected: Plagiarized content detected",
			BlogID:        result.Submission.ID,
			Reason:        string(models.ReasonPlagiarism),
			WordCount:     result.WordCount,
			IsPlagiarized: true,
			Similarity:    result.Similarity,
		})
	default:
		handleError(w, h.logger, fmt.Errorf("unknown submission outcome %q", result.Outcome))
	}
}

// Publish publishes a pending submission without re-running the checks.
// POST /{id}/publish
func (h *SubmissionHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, err := h.service.Publish(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entry)
}

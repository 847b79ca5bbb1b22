package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"quill/internal/domain"
	"quill/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Every body carries a "message" field next to the problem detail.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &validationErr):
		extras := map[string]interface{}{"message": validationErr.Message}
		if len(validationErr.Fields) > 0 {
			extras["errors"] = validationErr.Fields
		}
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Error(), extras)
	case errors.Is(err, domain.ErrValidation):
		respond(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnsupportedFormat):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(), map[string]interface{}{
			"message": "Only PDF, DOC, DOCX, and TXT files are allowed",
			"errors":  map[string]string{"blogFile": "unsupported file type"},
		})
	case errors.Is(err, domain.ErrNotFound):
		respond(w, http.StatusNotFound, "Blog not found")
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, conflictErr.Error(), map[string]interface{}{
			"message":  conflictErr.Message,
			"resource": conflictErr.ResourceType,
			"id":       conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrUnavailable):
		logger.Warn("dependency unavailable", "error", err)
		respond(w, http.StatusServiceUnavailable, "Plagiarism check unavailable, please try again later")
	case errors.Is(err, domain.ErrExtractionFailed):
		logger.Error("text extraction failed", "error", err)
		respond(w, http.StatusInternalServerError, "Could not read the uploaded file")
	default:
		logger.Error("request failed", "error", err)
		respond(w, http.StatusInternalServerError, "internal server error")
	}
}

func respond(w http.ResponseWriter, status int, message string) {
	httputil.RespondErrorWithExtras(w, status, message, map[string]interface{}{"message": message})
}

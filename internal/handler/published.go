package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// PublishedHandler serves the public listing
type PublishedHandler struct {
	service services.SubmissionService
	logger  *slog.Logger
}

// NewPublishedHandler creates a new published entry handler
func NewPublishedHandler(service services.SubmissionService, logger *slog.Logger) *PublishedHandler {
	return &PublishedHandler{
		service: service,
		logger:  logger,
	}
}

// List returns published entries, newest first.
// GET /published?category=&limit=&offset=
func (h *PublishedHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	opts := models.ListOptions{Category: query.Get("category")}
	var err error
	if opts.Limit, err = intParam(query.Get("limit"), "limit"); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if opts.Offset, err = intParam(query.Get("offset"), "offset"); err != nil {
		handleError(w, h.logger, err)
		return
	}

	entries, err := h.service.ListPublished(r.Context(), opts)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entries)
}

// Get returns one published entry.
// GET /{id}
func (h *PublishedHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetPublished(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entry)
}

// intParam parses an optional integer query parameter; empty means 0
func intParam(value, name string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.NewFieldError(name, "must be an integer")
	}
	return n, nil
}

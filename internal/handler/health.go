package handler

import (
	"net/http"

	"quill/internal/httputil"
)

// Health reports liveness.
// GET /
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Blog submission service is running",
	})
}

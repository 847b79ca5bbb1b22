package handler

import "net/http"

// RegisterRoutes mounts the blog routes on mux (Go 1.22+ patterns).
// The literal routes take precedence over GET /{id}.
func RegisterRoutes(mux *http.ServeMux, submissions *SubmissionHandler, published *PublishedHandler) {
	mux.HandleFunc("GET /{$}", Health)
	mux.HandleFunc("POST /submit", submissions.Submit)
	mux.HandleFunc("POST /{id}/publish", submissions.Publish)
	mux.HandleFunc("GET /published", published.List)
	mux.HandleFunc("GET /{id}", published.Get)
}

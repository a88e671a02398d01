package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/publish"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *publish.Service, idx index.DocumentIndex, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, idx)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Publish cycle.
	r.Post("/publish", h.Publish)
	r.Post("/preview", h.Preview)
	r.Post("/delete", h.Delete)
	r.Post("/unlink", h.Unlink)
	r.Get("/ping", h.Ping)

	// Vault index.
	r.Get("/documents", h.ListDocuments)
	r.Get("/backlinks", h.Backlinks)
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// corpusRoot is used to resolve the assets directory.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler, corpusRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAssetHandler(corpusRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents (read-only).
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/*", h.GetDocument)

	// Search.
	r.Get("/search", h.Search)

	// Tag histogram.
	r.Get("/tags", h.Tags)

	// Full resync against the corpus directory.
	r.Post("/reload", h.Reload)

	// Article assets (serve-only).
	r.Get("/assets/{filename}", ah.ServeFile)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

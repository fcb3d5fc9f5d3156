package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jr6v5m2k/rotomsongs/internal/songservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *songservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/songs", h.ListSongs)
	r.Get("/songs/{id}", h.GetSong)
	r.Get("/songs/{id}/navigation", h.Navigation)
	r.Get("/songs/{id}/references", h.References)
	r.Get("/params", h.Params)

	r.Get("/search", h.Search)
	r.Get("/search/lyrics", h.SearchLyrics)
	r.Get("/suggest", h.Suggest)
	r.Get("/stats", h.Stats)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

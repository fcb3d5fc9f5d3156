package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jr6v5m2k/rotomsongs/internal/songservice"
)

const defaultPopularArtists = 10

// Handler holds API route handlers.
type Handler struct {
	svc *songservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *songservice.Service) *Handler {
	return &Handler{svc: svc}
}

func intParam(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// ListSongs handles GET /api/songs.
//
//	@Summary		List songs with optional pagination, tag filter and sort
//	@Tags			songs
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			sort	query		string	false	"Sort order"	Enums(newest, oldest, title, artist)
//	@Param			ids		query		string	false	"Comma separated ids to resolve instead of listing"
//	@Success		200		{object}	SongListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs [get]
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if raw := q.Get("ids"); raw != "" {
		items := h.svc.References(r.Context(), strings.Split(raw, ","))
		writeJSON(w, http.StatusOK, SongListResponse{Songs: items, Total: len(items)})
		return
	}

	res, err := h.svc.List(r.Context(), songservice.ListOptions{
		Limit:  intParam(r, "limit"),
		Offset: intParam(r, "offset"),
		Tag:    q.Get("tag"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		writeError(w, "list songs", err)
		return
	}
	writeJSON(w, http.StatusOK, SongListResponse{Songs: res.Items, Total: res.Total})
}

// GetSong handles GET /api/songs/{id}.
//
//	@Summary		Get a single song with references and navigation
//	@Tags			songs
//	@Produce		json
//	@Param			id	path		string	true	"Song id (YYYYMMDD_HHMM)"
//	@Success		200	{object}	SongDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id} [get]
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	song, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get song", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// Navigation handles GET /api/songs/{id}/navigation.
//
//	@Summary		Get the newer and older neighbours of a song
//	@Tags			songs
//	@Produce		json
//	@Param			id	path		string	true	"Song id"
//	@Success		200	{object}	Navigation
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id}/navigation [get]
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nav, err := h.svc.Navigation(r.Context(), id)
	if err != nil {
		writeError(w, "navigation", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

// References handles GET /api/songs/{id}/references.
//
//	@Summary		Get the songs a song references and the ids referencing it
//	@Tags			songs
//	@Produce		json
//	@Param			id	path		string	true	"Song id"
//	@Success		200	{object}	ReferencesResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id}/references [get]
func (h *Handler) References(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	song, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "references", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, ReferencesResponse{
		References:   song.References,
		ReferencedBy: song.ReferencedBy,
	})
}

// Params handles GET /api/params.
//
//	@Summary		List every song id for static route generation
//	@Tags			songs
//	@Produce		json
//	@Success		200	{object}	ParamsResponse
//	@Security		BearerAuth
//	@Router			/params [get]
func (h *Handler) Params(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ParamsResponse{IDs: h.svc.StaticParams(r.Context())})
}

// Search handles GET /api/search.
//
//	@Summary		Fuzzy search across titles, lyrics and original song info
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Search query; empty returns every song"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.svc.Search(r.Context(), r.URL.Query().Get("q"), intParam(r, "limit"))
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, BuildID: h.svc.BuildID()})
}

// SearchLyrics handles GET /api/search/lyrics.
//
//	@Summary		Substring search over lyrics
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search text"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	LyricSearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/lyrics [get]
func (h *Handler) SearchLyrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	hits, err := h.svc.SearchLyrics(r.Context(), q, intParam(r, "limit"))
	if err != nil {
		writeError(w, "search lyrics", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, LyricSearchResponse{Results: hits})
}

// Suggest handles GET /api/suggest.
//
//	@Summary		Autocomplete suggestions from titles and artists
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Partial query (two characters or more)"
//	@Param			max	query		int		false	"Max suggestions"
//	@Success		200	{object}	SuggestResponse
//	@Security		BearerAuth
//	@Router			/suggest [get]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	sug := h.svc.Suggest(r.Context(), r.URL.Query().Get("q"), intParam(r, "max"))
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: sug})
}

// Stats handles GET /api/stats.
//
//	@Summary		Catalog statistics and popular artists
//	@Tags			search
//	@Produce		json
//	@Param			artists	query		int	false	"Number of popular artists"
//	@Success		200		{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "artists")
	if limit <= 0 {
		limit = defaultPopularArtists
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:          h.svc.Stats(r.Context()),
		PopularArtists: h.svc.PopularArtists(r.Context(), limit),
		BuildID:        h.svc.BuildID(),
	})
}

package api

import (
	"github.com/jr6v5m2k/rotomsongs/internal/index"
	"github.com/jr6v5m2k/rotomsongs/internal/models"
	"github.com/jr6v5m2k/rotomsongs/internal/search"
)

// SongDetail is the full song response type (aliased from the domain layer).
type SongDetail = models.SongDetail

// SongListItem is a lightweight item in a list response (aliased from the domain layer).
type SongListItem = models.SongListItem

// Navigation holds the neighbours of a song.
type Navigation = models.Navigation

// SongListResponse wraps paginated song listings.
type SongListResponse struct {
	Songs []SongListItem `json:"songs" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// ReferencesResponse lists a song's outgoing and incoming references.
type ReferencesResponse struct {
	References   []SongListItem `json:"references" validate:"required"`
	ReferencedBy []string       `json:"referenced_by" example:"20250615_1729" validate:"required"`
}

// ParamsResponse lists every song id.
type ParamsResponse struct {
	IDs []string `json:"ids" example:"20250615_1729,20230209_1519" validate:"required"`
}

// SearchResponse wraps ranked fuzzy search results.
type SearchResponse struct {
	Results []search.Result `json:"results" validate:"required"`
	BuildID string          `json:"build_id" example:"6f1c..."`
}

// LyricSearchResponse wraps lyric search hits.
type LyricSearchResponse struct {
	Results []index.LyricHit `json:"results" validate:"required"`
}

// SuggestResponse wraps autocomplete suggestions.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}

// StatsResponse carries catalog statistics.
type StatsResponse struct {
	Stats          search.Stats         `json:"stats" validate:"required"`
	PopularArtists []search.ArtistCount `json:"popular_artists" validate:"required"`
	BuildID        string               `json:"build_id"`
}

// Package songservice owns the current catalog snapshot and answers the
// read-only catalog queries used by the HTTP API, MCP tools and static export.
package songservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jr6v5m2k/rotomsongs/internal/apperr"
	"github.com/jr6v5m2k/rotomsongs/internal/catalog"
	"github.com/jr6v5m2k/rotomsongs/internal/index"
	"github.com/jr6v5m2k/rotomsongs/internal/models"
	"github.com/jr6v5m2k/rotomsongs/internal/search"
)

// snapshot is an immutable view of the catalog at one reload.
type snapshot struct {
	songs    []models.Song
	items    []models.SongListItem
	byID     map[string]int
	refsBy   map[string][]string
	buildID  string
	loadedAt time.Time
}

func newSnapshot(songs []models.Song, buildID string) *snapshot {
	s := &snapshot{
		songs:    songs,
		items:    catalog.ToListItems(songs),
		byID:     make(map[string]int, len(songs)),
		refsBy:   make(map[string][]string),
		buildID:  buildID,
		loadedAt: time.Now().UTC(),
	}
	for i, song := range songs {
		s.byID[song.ID] = i
	}
	// songs are newest first, so each refsBy list is too.
	for _, song := range songs {
		seen := make(map[string]bool, len(song.References))
		for _, target := range song.References {
			if seen[target] {
				continue
			}
			seen[target] = true
			s.refsBy[target] = append(s.refsBy[target], song.ID)
		}
	}
	return s
}

// Service coordinates the repository, the search cache and the SQLite index.
type Service struct {
	repo        *catalog.Repository
	db          index.SongIndex
	cache       *search.Cache
	logger      *slog.Logger
	suggestions int

	mu   sync.Mutex // serialises Reload
	snap atomic.Pointer[snapshot]
}

// Option configures a Service.
type Option func(*Service)

// WithIndex mirrors every reload into db and answers referenced-by and lyric
// queries from it.
func WithIndex(db index.SongIndex) Option {
	return func(s *Service) { s.db = db }
}

// WithSearchOptions configures the fuzzy search engine.
func WithSearchOptions(opts search.Options) Option {
	return func(s *Service) { s.cache = search.NewCache(opts) }
}

// WithSuggestions sets the default number of suggestions.
func WithSuggestions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestions = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service with an empty catalog. Call Reload to load songs.
func New(repo *catalog.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		cache:       search.NewCache(search.Options{}),
		logger:      slog.Default(),
		suggestions: search.DefaultSuggestions,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(newSnapshot(nil, ""))
	return s
}

func (s *Service) current() *snapshot {
	return s.snap.Load()
}

// ReloadResult describes a completed reload.
type ReloadResult struct {
	BuildID string
	Songs   int
	Changes []index.Change
}

// Reload re-reads the repository, syncs the index and rebuilds the search
// engine. Changes lists songs added, modified or removed since the previous
// snapshot.
func (s *Service) Reload(ctx context.Context) (ReloadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs := s.repo.AllSongs(ctx)
	if err := ctx.Err(); err != nil {
		return ReloadResult{}, fmt.Errorf("songservice: reload: %w", err)
	}

	if s.db != nil {
		st, err := index.Sync(s.db, songs, s.logger)
		if err != nil {
			s.logger.Error("index sync failed", slog.String("error", err.Error()))
		} else {
			s.logger.Debug("index synced",
				slog.Int("upserted", st.Upserted),
				slog.Int("removed", st.Removed),
				slog.Int("unchanged", st.Unchanged))
		}
	}

	prev := s.current()
	built := s.cache.Replace(catalog.ToListItems(songs))
	next := newSnapshot(songs, built.ID)
	s.snap.Store(next)

	changes := diff(prev, next)
	s.logger.Info("catalog reloaded",
		slog.Int("songs", len(songs)),
		slog.Int("changes", len(changes)),
		slog.String("build_id", built.ID))
	return ReloadResult{BuildID: built.ID, Songs: len(songs), Changes: changes}, nil
}

func diff(prev, next *snapshot) []index.Change {
	var out []index.Change
	for _, song := range next.songs {
		i, ok := prev.byID[song.ID]
		switch {
		case !ok:
			out = append(out, index.Change{Kind: index.ChangeCreated, ID: song.ID})
		case prev.songs[i].Checksum != song.Checksum:
			out = append(out, index.Change{Kind: index.ChangeUpdated, ID: song.ID})
		}
	}
	for _, song := range prev.songs {
		if _, ok := next.byID[song.ID]; !ok {
			out = append(out, index.Change{Kind: index.ChangeDeleted, ID: song.ID})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BuildID identifies the current snapshot. It is empty before the first
// reload.
func (s *Service) BuildID() string {
	return s.current().buildID
}

// LoadedAt is when the current snapshot was built.
func (s *Service) LoadedAt() time.Time {
	return s.current().loadedAt
}

// Songs returns every catalog song, newest first.
func (s *Service) Songs(_ context.Context) []models.Song {
	return append([]models.Song{}, s.current().songs...)
}

// Items returns every list item, newest first.
func (s *Service) Items(_ context.Context) []models.SongListItem {
	return append([]models.SongListItem{}, s.current().items...)
}

// Sort orders accepted by List.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortTitle  = "title"
	SortArtist = "artist"
)

// ListOptions filters and pages List.
type ListOptions struct {
	Limit  int
	Offset int
	Tag    string
	Sort   string
}

// ListResult is one page of list items plus the filtered total.
type ListResult struct {
	Items []models.SongListItem `json:"items"`
	Total int                   `json:"total"`
}

// List returns a page of list items.
func (s *Service) List(_ context.Context, opts ListOptions) (ListResult, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return ListResult{}, fmt.Errorf("songservice: negative limit or offset: %w", apperr.ErrValidation)
	}
	snap := s.current()

	items := make([]models.SongListItem, 0, len(snap.items))
	for _, it := range snap.items {
		if opts.Tag != "" && !hasTag(it.Tags, opts.Tag) {
			continue
		}
		items = append(items, it)
	}

	switch opts.Sort {
	case "", SortNewest:
	case SortOldest:
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	case SortTitle:
		catalog.SortItemsByTitle(items)
	case SortArtist:
		catalog.SortItemsByArtist(items)
	default:
		return ListResult{}, fmt.Errorf("songservice: unknown sort %q: %w", opts.Sort, apperr.ErrValidation)
	}

	total := len(items)
	if opts.Offset >= total {
		return ListResult{Items: []models.SongListItem{}, Total: total}, nil
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return ListResult{Items: items, Total: total}, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Get returns the full detail of a song.
func (s *Service) Get(ctx context.Context, id string) (*models.SongDetail, error) {
	snap := s.current()
	i, ok := snap.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	song := snap.songs[i]
	refsBy, err := s.referencedBy(snap, id)
	if err != nil {
		return nil, err
	}
	return &models.SongDetail{
		Song:         song,
		References:   resolve(snap, song.References),
		ReferencedBy: refsBy,
		Navigation:   catalog.Navigate(snap.items, id),
	}, nil
}

// Navigation returns the newer and older neighbours of id.
func (s *Service) Navigation(_ context.Context, id string) (models.Navigation, error) {
	snap := s.current()
	if _, ok := snap.byID[id]; !ok {
		return models.Navigation{}, apperr.ErrNotFound
	}
	return catalog.Navigate(snap.items, id), nil
}

// References resolves ids to list items in order, skipping unknown ids.
func (s *Service) References(_ context.Context, ids []string) []models.SongListItem {
	return resolve(s.current(), ids)
}

func resolve(snap *snapshot, ids []string) []models.SongListItem {
	out := make([]models.SongListItem, 0, len(ids))
	for _, id := range ids {
		if i, ok := snap.byID[id]; ok {
			out = append(out, snap.items[i])
		}
	}
	return out
}

// ReferencedBy returns the ids of songs that reference id, newest first.
func (s *Service) ReferencedBy(_ context.Context, id string) ([]string, error) {
	snap := s.current()
	if _, ok := snap.byID[id]; !ok {
		return nil, apperr.ErrNotFound
	}
	return s.referencedBy(snap, id)
}

func (s *Service) referencedBy(snap *snapshot, id string) ([]string, error) {
	if s.db != nil {
		ids, err := s.db.ReferencedBy(id)
		if err != nil {
			return nil, fmt.Errorf("songservice: referenced by: %w", err)
		}
		return ids, nil
	}
	return append([]string{}, snap.refsBy[id]...), nil
}

// StaticParams lists every catalog id, newest first.
func (s *Service) StaticParams(_ context.Context) []string {
	snap := s.current()
	ids := make([]string, len(snap.songs))
	for i, song := range snap.songs {
		ids[i] = song.ID
	}
	return ids
}

func (s *Service) engine() *search.Engine {
	if snap := s.cache.Current(); snap != nil {
		return snap.Engine
	}
	return search.New(nil, search.Options{})
}

// Search runs a fuzzy search over the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) []search.Result {
	return s.engine().Search(query, limit)
}

// Suggest returns autocomplete suggestions. limit <= 0 selects the
// configured default.
func (s *Service) Suggest(_ context.Context, query string, limit int) []string {
	if limit <= 0 {
		limit = s.suggestions
	}
	return s.engine().Suggestions(query, limit)
}

// Stats summarises the catalog.
func (s *Service) Stats(_ context.Context) search.Stats {
	return s.engine().Stats()
}

// PopularArtists returns the artists with the most parodies.
func (s *Service) PopularArtists(_ context.Context, limit int) []search.ArtistCount {
	return s.engine().PopularArtists(limit)
}

// SearchLyrics finds songs whose title or lyrics contain query.
func (s *Service) SearchLyrics(_ context.Context, query string, limit int) ([]index.LyricHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []index.LyricHit{}, nil
	}
	if s.db != nil {
		hits, err := s.db.SearchLyrics(query, limit)
		if err != nil {
			return nil, fmt.Errorf("songservice: search lyrics: %w", err)
		}
		return hits, nil
	}

	if limit <= 0 {
		limit = 20
	}
	hits := []index.LyricHit{}
	for _, song := range s.current().songs {
		if !strings.Contains(song.Frontmatter.Title, query) &&
			!strings.Contains(song.Lyrics, query) &&
			!strings.Contains(song.Original.Lyrics, query) {
			continue
		}
		hits = append(hits, index.LyricHit{ID: song.ID, Title: song.Frontmatter.Title, Snippet: catalog.LyricsPreview(song.Lyrics)})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

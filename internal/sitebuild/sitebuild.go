// Package sitebuild exports the catalog as static JSON files for a
// pre-rendered site.
package sitebuild

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
	"github.com/jr6v5m2k/rotomsongs/internal/search"
	"github.com/jr6v5m2k/rotomsongs/internal/songservice"
	"github.com/jr6v5m2k/rotomsongs/internal/storage"
)

// Output file names, relative to the output directory.
const (
	SongsFile       = "songs.json"
	ParamsFile      = "params.json"
	SearchIndexFile = "search-index.json"
	StatsFile       = "stats.json"
	SongDir         = "songs"
)

const popularArtists = 10

// SearchIndex is the client-side search payload.
type SearchIndex struct {
	Songs   []models.SongListItem `json:"songs"`
	Artists []string              `json:"artists"`
	Tags    []string              `json:"tags"`
	// SearchableContent maps a song id to its lower-cased title, lyrics,
	// original song and tags joined by spaces.
	SearchableContent map[string]string `json:"searchable_content"`
	BuildID           string            `json:"build_id"`
}

// Stats is the content of stats.json.
type Stats struct {
	search.Stats
	PopularArtists []search.ArtistCount `json:"popular_artists"`
	BuildID        string               `json:"build_id"`
}

// Param is one entry of params.json.
type Param struct {
	ID string `json:"id"`
}

// Manifest summarises a finished export.
type Manifest struct {
	BuildID string
	Songs   int
	Files   []string
}

// NewSearchIndex builds the search payload from songs and their list items,
// both in catalog order.
func NewSearchIndex(songs []models.Song, items []models.SongListItem, buildID string) SearchIndex {
	artistSet := map[string]struct{}{}
	tagSet := map[string]struct{}{}
	for _, it := range items {
		if it.OriginalArtist != "" {
			artistSet[it.OriginalArtist] = struct{}{}
		}
		for _, tag := range it.Tags {
			tagSet[tag] = struct{}{}
		}
	}

	content := make(map[string]string, len(songs))
	for _, s := range songs {
		content[s.ID] = strings.ToLower(strings.Join([]string{
			s.Frontmatter.Title,
			s.Lyrics,
			s.Original.Artist,
			s.Original.Title,
			s.Original.Lyrics,
			strings.Join(s.Frontmatter.Tags, " "),
		}, " "))
	}

	return SearchIndex{
		Songs:             items,
		Artists:           sortedKeys(artistSet),
		Tags:              sortedKeys(tagSet),
		SearchableContent: content,
		BuildID:           buildID,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Builder writes the export files.
type Builder struct {
	svc     *songservice.Service
	out     storage.Provider
	workers int
	logger  *slog.Logger
}

// NewBuilder creates a Builder writing into out.
func NewBuilder(svc *songservice.Service, out storage.Provider, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{svc: svc, out: out, workers: runtime.GOMAXPROCS(0), logger: logger}
}

func (b *Builder) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sitebuild: encode %s: %w", name, err)
	}
	if err := b.out.Write(name, data); err != nil {
		return fmt.Errorf("sitebuild: %w", err)
	}
	return nil
}

// Build exports the service's current snapshot. Reload the service first.
func (b *Builder) Build(ctx context.Context) (Manifest, error) {
	songs := b.svc.Songs(ctx)
	items := b.svc.Items(ctx)
	buildID := b.svc.BuildID()

	m := Manifest{BuildID: buildID, Songs: len(songs)}
	write := func(name string, v any) error {
		if err := b.writeJSON(name, v); err != nil {
			return err
		}
		m.Files = append(m.Files, name)
		return nil
	}

	if err := write(SongsFile, items); err != nil {
		return m, err
	}

	params := make([]Param, 0, len(songs))
	for _, id := range b.svc.StaticParams(ctx) {
		params = append(params, Param{ID: id})
	}
	if err := write(ParamsFile, params); err != nil {
		return m, err
	}

	if err := write(SearchIndexFile, NewSearchIndex(songs, items, buildID)); err != nil {
		return m, err
	}

	if err := write(StatsFile, Stats{
		Stats:          b.svc.Stats(ctx),
		PopularArtists: b.svc.PopularArtists(ctx, popularArtists),
		BuildID:        buildID,
	}); err != nil {
		return m, err
	}

	names := make([]string, len(songs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, s := range songs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, err := b.svc.Get(gctx, s.ID)
			if err != nil {
				return fmt.Errorf("sitebuild: song %s: %w", s.ID, err)
			}
			name := SongDir + "/" + s.ID + ".json"
			if err := b.writeJSON(name, detail); err != nil {
				return err
			}
			names[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return m, err
	}
	m.Files = append(m.Files, names...)

	b.logger.Info("static export written",
		slog.String("build_id", buildID),
		slog.Int("songs", len(songs)),
		slog.Int("files", len(m.Files)),
	)
	return m, nil
}

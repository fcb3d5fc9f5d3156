package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
	"github.com/jr6v5m2k/rotomsongs/internal/parser"
	"github.com/jr6v5m2k/rotomsongs/internal/storage"
	"github.com/jr6v5m2k/rotomsongs/internal/validation"
)

// Repository reads songs from a content directory. Files that fail to read,
// parse or validate are logged and skipped; they never fail a listing.
type Repository struct {
	store     storage.Provider
	validator *validation.Validator
	workers   int
	logger    *slog.Logger
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithWorkers bounds the number of files read in parallel.
func WithWorkers(n int) RepositoryOption {
	return func(r *Repository) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(l *slog.Logger) RepositoryOption {
	return func(r *Repository) { r.logger = l }
}

// NewRepository creates a repository over store.
func NewRepository(store storage.Provider, v *validation.Validator, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:     store,
		validator: v,
		workers:   runtime.GOMAXPROCS(0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InclusionTag returns the tag a file needs to be part of the catalog.
func (r *Repository) InclusionTag() string {
	return r.validator.InclusionTag()
}

// entry is a file that passed frontmatter validation.
type entry struct {
	fileName string
	fm       models.Frontmatter
	body     string
	sum      string
}

// load reads, splits and validates one file. ok is false when the file must
// be skipped.
func (r *Repository) load(fileName string) (entry, bool) {
	data, err := r.store.Read(fileName)
	if err != nil {
		r.logger.Error("read song file", slog.String("file", fileName), slog.String("error", err.Error()))
		return entry{}, false
	}
	raw, body, err := parser.Split(data)
	if err != nil {
		r.logger.Warn("split song file", slog.String("file", fileName), slog.String("error", err.Error()))
		return entry{}, false
	}
	fm, ok := r.validator.SafeValidate(raw, fileName)
	if !ok {
		return entry{}, false
	}
	if !fm.HasTag(r.validator.InclusionTag()) {
		return entry{}, false
	}
	return entry{fileName: fileName, fm: fm, body: body, sum: fileSum(data)}, true
}

// fileSum is the index's change detector: the hex SHA-256 of the raw file.
func fileSum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// loadAll runs load over every markdown file in the content directory on a
// bounded worker group. Results keep directory order.
func (r *Repository) loadAll(ctx context.Context) []entry {
	files, err := r.store.List("")
	if err != nil {
		r.logger.Error("list songs directory", slog.String("error", err.Error()))
		return nil
	}

	results := make([]entry, len(files))
	keep := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i], keep[i] = r.load(f.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("song listing interrupted", slog.String("error", err.Error()))
	}

	out := make([]entry, 0, len(files))
	for i := range results {
		if keep[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// AllSongs returns every tagged, valid song, newest first.
func (r *Repository) AllSongs(ctx context.Context) []models.Song {
	entries := r.loadAll(ctx)
	songs := make([]models.Song, 0, len(entries))
	for _, e := range entries {
		songs = append(songs, Assemble(e.fm, e.body, e.fileName, e.sum))
	}
	SortSongsByID(songs)
	return songs
}

// SongByID returns the song stored in {id}.md. ok is false when the file is
// missing, invalid or untagged.
func (r *Repository) SongByID(_ context.Context, id string) (models.Song, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return models.Song{}, false
	}
	fileName := id + ".md"
	e, ok := r.load(fileName)
	if !ok {
		return models.Song{}, false
	}
	return Assemble(e.fm, e.body, path.Base(e.fileName), e.sum), true
}

// SongsByIDs resolves ids in order, skipping the ones that are absent.
func (r *Repository) SongsByIDs(ctx context.Context, ids []string) []models.Song {
	out := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.SongByID(ctx, id); ok {
			out = append(out, s)
		}
	}
	return out
}

// StaticParams lists the identifiers of every catalog song, newest first.
// Bodies are not parsed.
func (r *Repository) StaticParams(ctx context.Context) []string {
	entries := r.loadAll(ctx)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strings.TrimSuffix(e.fileName, ".md"))
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return newerFirst(ids[i], ids[j]) })
}

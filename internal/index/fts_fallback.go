//go:build !sqlite_fts5

package index

import (
	"database/sql"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; lyric search uses LIKE over the songs table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ models.Song) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// SearchLyrics performs a LIKE-based search over titles and lyrics
// (fallback when FTS5 is not compiled in).
func (db *DB) SearchLyrics(query string, limit int) ([]LyricHit, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.searchLike(query, limit)
}

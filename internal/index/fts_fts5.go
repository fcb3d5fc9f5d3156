//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS songs_fts USING fts5(
			id UNINDEXED,
			title,
			lyrics,
			original_lyrics,
			tokenize = 'trigram'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, s models.Song) error {
	_, _ = tx.Exec(`DELETE FROM songs_fts WHERE id = ?`, s.ID)
	_, err := tx.Exec(`INSERT INTO songs_fts (id, title, lyrics, original_lyrics) VALUES (?, ?, ?, ?)`,
		s.ID, s.Frontmatter.Title, s.Lyrics, s.Original.Lyrics)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM songs_fts WHERE id = ?`, id)
}

// SearchLyrics performs an FTS5 search over titles and lyrics and returns
// hits with highlighted snippets. Queries under three characters use LIKE.
func (db *DB) SearchLyrics(query string, limit int) ([]LyricHit, error) {
	if limit <= 0 {
		limit = 20
	}
	// The trigram tokenizer cannot match fewer than three characters.
	if utf8.RuneCountInString(query) < 3 {
		return db.searchLike(query, limit)
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       title,
		       snippet(songs_fts, 2, '<b>', '</b>', '...', 32)
		FROM songs_fts
		WHERE songs_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, quoteFTS(query), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search lyrics: %w", err)
	}
	defer rows.Close()

	out := []LyricHit{}
	for rows.Next() {
		var h LyricHit
		if err := rows.Scan(&h.ID, &h.Title, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// quoteFTS turns free text into a single FTS5 phrase.
func quoteFTS(q string) string {
	out := make([]rune, 0, len(q)+2)
	out = append(out, '"')
	for _, r := range q {
		if r == '"' {
			out = append(out, '"')
		}
		out = append(out, r)
	}
	return string(append(out, '"'))
}

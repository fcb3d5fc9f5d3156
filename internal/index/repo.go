package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

// LyricHit is one lyric search result.
type LyricHit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertSong inserts or replaces a song, its FTS entry and its outgoing
// references within a transaction.
func (db *DB) UpsertSong(s models.Song) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	tags := s.Frontmatter.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO songs (id, title, checksum, original_artist, original_title, tags, lyrics, original_lyrics, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title           = excluded.title,
			checksum        = excluded.checksum,
			original_artist = excluded.original_artist,
			original_title  = excluded.original_title,
			tags            = excluded.tags,
			lyrics          = excluded.lyrics,
			original_lyrics = excluded.original_lyrics,
			indexed_at      = excluded.indexed_at
	`, s.ID, s.Frontmatter.Title, s.Checksum, s.Original.Artist, s.Original.Title,
		string(tagsJSON), s.Lyrics, s.Original.Lyrics)
	if err != nil {
		return fmt.Errorf("index: upsert song: %w", err)
	}

	if err := ftsUpsert(tx, s); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM song_refs WHERE source = ?`, s.ID); err != nil {
		return fmt.Errorf("index: clear refs: %w", err)
	}
	if len(s.References) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO song_refs (source, target, position) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for i, target := range s.References {
			if _, err := stmt.Exec(s.ID, target, i); err != nil {
				return fmt.Errorf("index: insert ref: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteSong removes a song, its FTS entry and its outgoing references.
func (db *DB) DeleteSong(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM song_refs WHERE source = ?`, id)
	_, _ = tx.Exec(`DELETE FROM songs WHERE id = ?`, id)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a song, or "" if it is not indexed.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM songs WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums maps every indexed song id to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM songs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// ReferencedBy returns the ids of songs whose Reference section links to
// id, newest first.
func (db *DB) ReferencedBy(id string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM song_refs WHERE target = ? ORDER BY source DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("index: referenced by: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of indexed songs.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM songs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// searchLike scans the songs table with LIKE, newest first. It serves
// builds without FTS5 and queries too short for the trigram tokenizer.
func (db *DB) searchLike(query string, limit int) ([]LyricHit, error) {
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, title, substr(lyrics, 1, 200)
		FROM songs
		WHERE title LIKE ? OR lyrics LIKE ? OR original_lyrics LIKE ?
		ORDER BY id DESC
		LIMIT ?
	`, like, like, like, limit)
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

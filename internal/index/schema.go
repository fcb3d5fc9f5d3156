// Package index mirrors the song catalog into SQLite for cross-reference
// lookups and lyric full-text search, and watches the content directory.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS songs (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	checksum        TEXT NOT NULL DEFAULT '',
	original_artist TEXT NOT NULL DEFAULT '',
	original_title  TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '[]',
	lyrics          TEXT NOT NULL DEFAULT '',
	original_lyrics TEXT NOT NULL DEFAULT '',
	indexed_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS song_refs (
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	UNIQUE(source, target)
);

CREATE INDEX IF NOT EXISTS idx_song_refs_source ON song_refs(source);
CREATE INDEX IF NOT EXISTS idx_song_refs_target ON song_refs(target);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

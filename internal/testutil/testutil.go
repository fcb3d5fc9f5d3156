// Package testutil provides shared test helpers for content directories,
// song fixtures and databases.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jr6v5m2k/rotomsongs/internal/index"
	"github.com/jr6v5m2k/rotomsongs/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "rotomsongs-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContentDir creates a temporary content directory with a storage.Provider.
func TestContentDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Song describes a fixture file.
type Song struct {
	ID             string
	Title          string
	Tags           []string
	SourceURL      string
	Lyrics         string
	OriginalArtist string
	OriginalTitle  string
	OriginalLyrics string
	References     []string
}

// Markdown renders s in the catalog's file format.
func (s Song) Markdown() string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", s.Title)
	fmt.Fprintf(&b, "id: %q\n", s.ID)
	b.WriteString("created: 2023-02-09\nupdated: 2025-06-17T15:32:00\n")
	b.WriteString("tags:\n")
	for _, tag := range s.Tags {
		fmt.Fprintf(&b, "  - %s\n", tag)
	}
	b.WriteString("---\n")
	if s.SourceURL != "" {
		fmt.Fprintf(&b, "### Source\n![](%s)\n\n", s.SourceURL)
	}
	fmt.Fprintf(&b, "### Lyrics\n%s\n\n", s.Lyrics)
	fmt.Fprintf(&b, "### Original\n#### Artist\n%s\n\n#### Title\n%s\n\n#### Lyrics\n%s\n\n",
		s.OriginalArtist, s.OriginalTitle, s.OriginalLyrics)
	if len(s.References) > 0 {
		b.WriteString("### Reference\n")
		for _, ref := range s.References {
			fmt.Fprintf(&b, "- [[%s]]\n", ref)
		}
	}
	return b.String()
}

// WriteSong stores s as {ID}.md in store. Nil tags default to the
// inclusion tag.
func WriteSong(t *testing.T, store storage.Provider, s Song) {
	t.Helper()
	if s.Tags == nil {
		s.Tags = []string{"RotomSongs"}
	}
	if err := store.Write(s.ID+".md", []byte(s.Markdown())); err != nil {
		t.Fatal(err)
	}
}

package index

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "rotomsongs-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func song(id, checksum, lyrics string, refs ...string) models.Song {
	return models.Song{
		ID:          id,
		Frontmatter: models.Frontmatter{Title: "title " + id, ID: id, Tags: []string{"RotomSongs"}},
		Lyrics:      lyrics,
		Checksum:    checksum,
		References:  refs,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM songs`).Scan(&count); err != nil {
		t.Fatalf("songs table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM song_refs`).Scan(&count); err != nil {
		t.Fatalf("song_refs table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertSong(song("20230101_0000", "abc123", "la la")); err != nil {
		t.Fatalf("UpsertSong: %v", err)
	}
	cs, err := db.GetChecksum("20230101_0000")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestReferencedBy(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(song("20230101_0000", "1", "", "20220101_0000"))
	_ = db.UpsertSong(song("20240101_0000", "2", "", "20220101_0000", "20220101_0000"))

	refs, err := db.ReferencedBy("20220101_0000")
	if err != nil {
		t.Fatalf("ReferencedBy: %v", err)
	}
	if len(refs) != 2 || refs[0] != "20240101_0000" || refs[1] != "20230101_0000" {
		t.Errorf("refs = %v", refs)
	}

	none, err := db.ReferencedBy("nobody")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v, %v", none, err)
	}
}

func TestDeleteSong(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(song("20230101_0000", "x", "", "20220101_0000"))

	if err := db.DeleteSong("20230101_0000"); err != nil {
		t.Fatalf("DeleteSong: %v", err)
	}
	cs, _ := db.GetChecksum("20230101_0000")
	if cs != "" {
		t.Errorf("deleted song still has checksum %q", cs)
	}
	refs, _ := db.ReferencedBy("20220101_0000")
	if len(refs) != 0 {
		t.Errorf("expected no references after delete, got %v", refs)
	}
}

func TestUpsertReplacesReferences(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(song("20230101_0000", "1", "", "a"))
	_ = db.UpsertSong(song("20230101_0000", "2", "", "b"))

	if refs, _ := db.ReferencedBy("a"); len(refs) != 0 {
		t.Error("old reference should be removed on upsert")
	}
	if refs, _ := db.ReferencedBy("b"); len(refs) != 1 {
		t.Error("new reference should exist")
	}
	if n, _ := db.Count(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSearchLyrics_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(song("20230101_0000", "1", "uniqueword appears here"))
	_ = db.UpsertSong(song("20230102_0000", "2", "something else"))

	hits, err := db.SearchLyrics("uniqueword", 10)
	if err != nil {
		t.Fatalf("SearchLyrics: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "20230101_0000" {
		t.Errorf("hits = %+v, want 1 hit", hits)
	}
}

func TestSearchLyrics_TwoCharacterQuery(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(song("20230101_0000", "1", "電気ねずみが走る夜"))
	_ = db.UpsertSong(song("20230102_0000", "2", "静かな朝"))

	hits, err := db.SearchLyrics("ねず", 10)
	if err != nil {
		t.Fatalf("SearchLyrics: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "20230101_0000" {
		t.Errorf("hits = %+v, want the song containing ねず", hits)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	logger := quietLogger()

	songs := []models.Song{song("a", "1", ""), song("b", "1", "", "a")}
	st, err := Sync(db, songs, logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st.Upserted != 2 || st.Removed != 0 {
		t.Errorf("first sync = %+v", st)
	}

	songs = []models.Song{song("b", "2", "")}
	st, err = Sync(db, songs, logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st.Upserted != 1 || st.Removed != 1 || st.Unchanged != 0 {
		t.Errorf("second sync = %+v", st)
	}

	st, _ = Sync(db, songs, logger)
	if st.Unchanged != 1 || st.Upserted != 0 {
		t.Errorf("third sync = %+v", st)
	}

	all, _ := db.AllChecksums()
	if len(all) != 1 || all["b"] != "2" {
		t.Errorf("checksums = %v", all)
	}
}

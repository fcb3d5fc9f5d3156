package catalog

import (
	"context"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
	"github.com/jr6v5m2k/rotomsongs/internal/storage"
	"github.com/jr6v5m2k/rotomsongs/internal/testutil"
	"github.com/jr6v5m2k/rotomsongs/internal/validation"
)

func newRepo(t *testing.T) (*Repository, *storage.FS) {
	t.Helper()
	_, store := testutil.TestContentDir(t)
	return NewRepository(store, validation.New(""), WithWorkers(2)), store
}

func writeRaw(t *testing.T, store *storage.FS, name, content string) {
	t.Helper()
	if err := store.Write(name, []byte(content)); err != nil {
		t.Fatal(err)
	}
}

func TestAllSongs_SortedAndFiltered(t *testing.T) {
	repo, store := newRepo(t)
	testutil.WriteSong(t, store, testutil.Song{ID: "20230209_1519", Title: "b", Lyrics: "la"})
	testutil.WriteSong(t, store, testutil.Song{ID: "20250615_1729", Title: "c", Lyrics: "la"})
	testutil.WriteSong(t, store, testutil.Song{ID: "20221231_2359", Title: "a", Lyrics: "la"})
	testutil.WriteSong(t, store, testutil.Song{ID: "20240101_0000", Title: "draft", Tags: []string{"Draft"}})
	writeRaw(t, store, "20240202_0000.md", "---\ntitle: broken\n---\n### Lyrics\nx\n")
	writeRaw(t, store, "20240303_0000.md", "---\ntitle: [unclosed\n---\n")
	writeRaw(t, store, "notes.txt", "ignored")

	songs := repo.AllSongs(context.Background())
	got := make([]string, len(songs))
	for i, s := range songs {
		got[i] = s.ID
	}
	want := []string{"20250615_1729", "20230209_1519", "20221231_2359"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := 1; i < len(songs); i++ {
		if NumericID(songs[i-1].ID) <= NumericID(songs[i].ID) {
			t.Errorf("not strictly descending at %d", i)
		}
	}
}

func TestAllSongs_MissingDirectoryIsEmpty(t *testing.T) {
	dir, store := testutil.TestContentDir(t)
	repo := NewRepository(store, validation.New(""))
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if songs := repo.AllSongs(context.Background()); len(songs) != 0 {
		t.Errorf("expected empty catalog, got %d", len(songs))
	}
}

func TestSongChecksum_TracksFileBytes(t *testing.T) {
	repo, store := newRepo(t)
	testutil.WriteSong(t, store, testutil.Song{ID: "20230209_1519", Title: "a", Lyrics: "la"})
	first, ok := repo.SongByID(context.Background(), "20230209_1519")
	if !ok {
		t.Fatal("song not found")
	}
	if len(first.Checksum) != 64 || strings.Trim(first.Checksum, "0123456789abcdef") != "" {
		t.Fatalf("checksum = %q, want 64 lowercase hex digits", first.Checksum)
	}

	again, _ := repo.SongByID(context.Background(), "20230209_1519")
	if again.Checksum != first.Checksum {
		t.Error("checksum changed without an edit")
	}

	testutil.WriteSong(t, store, testutil.Song{ID: "20230209_1519", Title: "a", Lyrics: "lala"})
	edited, _ := repo.SongByID(context.Background(), "20230209_1519")
	if edited.Checksum == first.Checksum {
		t.Error("checksum did not change after an edit")
	}
}

func TestSongByID(t *testing.T) {
	repo, store := newRepo(t)
	testutil.WriteSong(t, store, testutil.Song{
		ID:             "20230209_1519",
		Title:          "オーバタ",
		SourceURL:      "https://x.com/Starlystrongest/status/1623567298064678912",
		Lyrics:         "一行目\n二行目",
		OriginalArtist: "Artist",
		OriginalTitle:  "Title",
		OriginalLyrics: "orig",
		References:     []string{"20230101_0000", "20230101_0000"},
	})

	s, ok := repo.SongByID(context.Background(), "20230209_1519")
	if !ok {
		t.Fatal("expected song")
	}
	if s.Slug != s.ID || s.FileName != "20230209_1519.md" {
		t.Errorf("slug/file = %q/%q", s.Slug, s.FileName)
	}
	if s.Frontmatter.Title != "オーバタ" || s.Frontmatter.Updated != "2025-06-17" {
		t.Errorf("frontmatter = %+v", s.Frontmatter)
	}
	if s.SourceURL != "https://x.com/Starlystrongest/status/1623567298064678912" {
		t.Errorf("source = %q", s.SourceURL)
	}
	if s.Original != (models.Original{Artist: "Artist", Title: "Title", Lyrics: "orig"}) {
		t.Errorf("original = %+v", s.Original)
	}
	if len(s.References) != 2 || s.References[0] != "20230101_0000" {
		t.Errorf("references = %v", s.References)
	}
	if s.Checksum == "" {
		t.Error("checksum not set")
	}
}

func TestSongByID_Absent(t *testing.T) {
	repo, store := newRepo(t)
	testutil.WriteSong(t, store, testutil.Song{ID: "20240101_0000", Title: "draft", Tags: []string{"Draft"}})

	for _, id := range []string{"20990101_0000", "20240101_0000", "../etc/passwd", "", "a/b"} {
		if _, ok := repo.SongByID(context.Background(), id); ok {
			t.Errorf("SongByID(%q) should be absent", id)
		}
	}
}

func TestSongByID_NoReferenceSection(t *testing.T) {
	repo, store := newRepo(t)
	testutil.WriteSong(t, store, testutil.Song{ID: "20230101_0000", Title: "x", Lyrics: "la"})
	s, ok := repo.SongByID(context.Background(), "20230101_0000")
	if !ok {
		t.Fatal("expected song")
	}
	if s.References == nil || len(s.References) != 0 {
		t.Errorf("references = %#v, want empty", s.References)
	}
}

func TestStaticParamsAndSongsByIDs(t *testing.T) {
	repo, store := newRepo(t)
	testutil.WriteSong(t, store, testutil.Song{ID: "20230101_0000", Title: "a"})
	testutil.WriteSong(t, store, testutil.Song{ID: "20240101_0000", Title: "b"})
	testutil.WriteSong(t, store, testutil.Song{ID: "20220101_0000", Title: "hidden", Tags: []string{}})

	ids := repo.StaticParams(context.Background())
	if strings.Join(ids, ",") != "20240101_0000,20230101_0000" {
		t.Errorf("params = %v", ids)
	}

	songs := repo.SongsByIDs(context.Background(), []string{"20230101_0000", "missing", "20220101_0000", "20240101_0000"})
	if len(songs) != 2 || songs[0].ID != "20230101_0000" || songs[1].ID != "20240101_0000" {
		t.Errorf("songs = %+v", songs)
	}
}

func TestLyricsPreview(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"one", "one"},
		{"\n\none\n\n two \nthree", "one  two "},
		{"a\nb", "a b"},
	}
	for _, tc := range cases {
		if got := LyricsPreview(tc.in); got != tc.want {
			t.Errorf("LyricsPreview(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	// Long text beyond two lines without truncation gets no ellipsis.
	if got := LyricsPreview("short\nlines\nand a third that is dropped"); got != "short lines" {
		t.Errorf("got %q", got)
	}

	long := strings.Repeat("あ", 80) + "\n" + strings.Repeat("い", 80)
	got := LyricsPreview(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 103 {
		t.Errorf("rune count = %d, want 103", n)
	}
}

func TestToListItemAndNavigate(t *testing.T) {
	songs := []models.Song{
		{ID: "3", Slug: "3", Frontmatter: models.Frontmatter{Title: "c"}, Lyrics: "x\ny\nz"},
		{ID: "2", Slug: "2", Frontmatter: models.Frontmatter{Title: "b", Tags: []string{"t"}}},
		{ID: "1", Slug: "1", Frontmatter: models.Frontmatter{Title: "a"}},
	}
	items := ToListItems(songs)
	if items[0].LyricsPreview != "x y" || items[0].Tags == nil {
		t.Errorf("item = %+v", items[0])
	}

	nav := Navigate(items, "2")
	if nav.Prev == nil || nav.Prev.ID != "3" || nav.Next == nil || nav.Next.ID != "1" {
		t.Errorf("nav = %+v", nav)
	}
	nav = Navigate(items, "3")
	if nav.Prev != nil || nav.Next == nil {
		t.Errorf("nav at head = %+v", nav)
	}
	nav = Navigate(items, "missing")
	if nav.Prev != nil || nav.Next != nil {
		t.Errorf("nav for missing = %+v", nav)
	}
}

func TestSortItems(t *testing.T) {
	items := []models.SongListItem{
		{ID: "20230101_0000", Title: "さくら", OriginalArtist: "B"},
		{ID: "20250101_0000", Title: "あおい", OriginalArtist: "A"},
		{ID: "20240101_0000", Title: "かえで", OriginalArtist: "C"},
	}
	SortItemsByTitle(items)
	if items[0].Title != "あおい" || items[2].Title != "さくら" {
		t.Errorf("by title = %+v", items)
	}
	SortItemsByArtist(items)
	if items[0].OriginalArtist != "A" || items[2].OriginalArtist != "C" {
		t.Errorf("by artist = %+v", items)
	}
	SortItemsByID(items)
	if items[0].ID != "20250101_0000" || items[2].ID != "20230101_0000" {
		t.Errorf("by id = %+v", items)
	}
}

func TestIDHelpers(t *testing.T) {
	if NumericID("20230209_1519") != 202302091519 {
		t.Error("NumericID")
	}
	if NumericID("junk") != 0 {
		t.Error("NumericID junk")
	}
	if got := FormatDateFromID("20250615_1729"); got != "2025/06/15 17:29" {
		t.Errorf("FormatDateFromID = %q", got)
	}
	if got := FormatDateShort("20250605_1729"); got != "2025/6/5" {
		t.Errorf("FormatDateShort = %q", got)
	}
	if FormatDateFromID("bad") != "" || FormatDateShort("bad") != "" {
		t.Error("malformed ids should format as empty")
	}
	if YearFromID("20250615_1729") != "2025" || YearFromID("x") != "" {
		t.Error("YearFromID")
	}
	ts, err := ParseIDTime("20250615_1729")
	if err != nil || ts.Hour() != 17 || ts.Minute() != 29 {
		t.Errorf("ParseIDTime = %v, %v", ts, err)
	}
	if !ValidID("20250615_1729") || ValidID("2025061_1729") {
		t.Error("ValidID")
	}
}

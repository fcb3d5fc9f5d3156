package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jr6v5m2k/rotomsongs/internal/catalog"
	"github.com/jr6v5m2k/rotomsongs/internal/index"
	"github.com/jr6v5m2k/rotomsongs/internal/models"
	"github.com/jr6v5m2k/rotomsongs/internal/search"
	"github.com/jr6v5m2k/rotomsongs/internal/songservice"
	"github.com/jr6v5m2k/rotomsongs/internal/testutil"
	"github.com/jr6v5m2k/rotomsongs/internal/validation"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	_, store := testutil.TestContentDir(t)
	testutil.WriteSong(t, store, testutil.Song{
		ID: "20230209_1519", Title: "オーバタ", Lyrics: "ロトムが\nとんでいく", OriginalArtist: "Kenshi", OriginalTitle: "Lemon",
	})
	testutil.WriteSong(t, store, testutil.Song{
		ID: "20250615_1729", Title: "でんきのうた", Lyrics: "ビリビリ\nでんき", OriginalArtist: "Aimer",
		Tags: []string{"RotomSongs", "Live"}, References: []string{"20230209_1519"},
	})

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	repo := catalog.NewRepository(store, validation.New("", validation.WithLogger(logger)), catalog.WithLogger(logger))
	svc := songservice.New(repo, songservice.WithIndex(testutil.TestDB(t)), songservice.WithLogger(logger))
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_songs":
		result, err = srv.searchSongs(ctx, req)
	case "get_song":
		result, err = srv.getSong(ctx, req)
	case "list_songs":
		result, err = srv.listSongs(ctx, req)
	case "get_referenced_by":
		result, err = srv.getReferencedBy(ctx, req)
	case "search_lyrics":
		result, err = srv.searchLyrics(ctx, req)
	case "get_song_format":
		result, err = srv.getSongFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchSongs(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_songs", map[string]any{"query": "lemon", "limit": 5})
	var results []search.Result
	if err := json.Unmarshal([]byte(resultText(r)), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) == 0 || results[0].Item.ID != "20230209_1519" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchSongs_MissingQuery(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_songs", map[string]any{})
	if !r.IsError {
		t.Error("expected error without query")
	}
}

func TestGetSong(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_song", map[string]any{"id": "20250615_1729"})
	var song models.SongDetail
	if err := json.Unmarshal([]byte(resultText(r)), &song); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if song.Frontmatter.Title != "でんきのうた" || song.Lyrics != "ビリビリ\nでんき" {
		t.Errorf("song = %+v", song)
	}
	if len(song.References) != 1 || song.References[0].ID != "20230209_1519" {
		t.Errorf("references = %+v", song.References)
	}
}

func TestGetSongMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_song", map[string]any{"id": "20990101_0000"})
	if !r.IsError {
		t.Error("expected error for missing song")
	}
	if !strings.Contains(resultText(r), "not found") {
		t.Errorf("text = %q", resultText(r))
	}
}

func TestListSongs(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_songs", map[string]any{"tag": "Live"})
	var res songservice.ListResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != "20250615_1729" {
		t.Errorf("list = %+v", res)
	}

	r = callTool(t, srv, "list_songs", map[string]any{"sort": "oldest", "limit": 1})
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.Total != 2 || len(res.Items) != 1 || res.Items[0].ID != "20230209_1519" {
		t.Errorf("oldest page = %+v", res)
	}

	r = callTool(t, srv, "list_songs", map[string]any{"sort": "random"})
	if !r.IsError {
		t.Error("expected error for unknown sort")
	}
}

func TestGetReferencedBy(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_referenced_by", map[string]any{"id": "20230209_1519"})
	if text := resultText(r); text != "20250615_1729" {
		t.Errorf("referenced by = %q, want 20250615_1729", text)
	}

	r = callTool(t, srv, "get_referenced_by", map[string]any{"id": "20250615_1729"})
	if text := resultText(r); text != "no referencing songs found" {
		t.Errorf("text = %q", text)
	}
}

func TestSearchLyrics(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_lyrics", map[string]any{"query": "とんでいく"})
	var hits []index.LyricHit
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "20230209_1519" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestGetSongFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_song_format", nil)
	if resultText(r) != SongFormatContract {
		t.Error("format tool should return the contract")
	}

	contents, err := srv.readSongFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != SongFormatURI || tc.Text != SongFormatContract {
		t.Errorf("resource = %+v", contents[0])
	}
}

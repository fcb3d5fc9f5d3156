// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the song catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jr6v5m2k/rotomsongs/internal/apperr"
	"github.com/jr6v5m2k/rotomsongs/internal/songservice"
)

const defaultLimit = 20

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *songservice.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *songservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"RotomSongs",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_songs",
		mcp.WithDescription("Fuzzy search over song titles, lyrics and original song info. "+
			"Katakana and hiragana match each other."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchSongs)

	s.mcp.AddTool(mcp.NewTool("get_song",
		mcp.WithDescription("Get a song with its lyrics, original song, references and neighbours. "+
			"See get_song_format for the field layout."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Song id (YYYYMMDD_HHMM)")),
	), s.getSong)

	s.mcp.AddTool(mcp.NewTool("list_songs",
		mcp.WithDescription("List catalog songs, newest first by default."),
		mcp.WithString("tag", mcp.Description("Only songs with this tag")),
		mcp.WithString("sort", mcp.Description("newest, oldest, title or artist")),
		mcp.WithNumber("limit", mcp.Description("Page size (0 for all)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listSongs)

	s.mcp.AddTool(mcp.NewTool("get_referenced_by",
		mcp.WithDescription("List the ids of songs whose Reference section links to the given song."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Song id")),
	), s.getReferencedBy)

	s.mcp.AddTool(mcp.NewTool("search_lyrics",
		mcp.WithDescription("Exact substring search over parody and original lyrics."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to find")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchLyrics)

	s.mcp.AddTool(mcp.NewTool("get_song_format",
		mcp.WithDescription("Returns the Markdown layout of a song file."),
	), s.getSongFormat)

	s.mcp.AddResource(
		mcp.NewResource(SongFormatURI, "Song Format",
			mcp.WithResourceDescription("Markdown layout every song file follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSongFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) searchSongs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := s.svc.Search(ctx, query, req.GetInt("limit", defaultLimit))
	return jsonResult(results), nil
}

func (s *Server) getSong(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	song, err := s.svc.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(song), nil
}

func (s *Server) listSongs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.List(ctx, songservice.ListOptions{
		Limit:  req.GetInt("limit", 0),
		Offset: req.GetInt("offset", 0),
		Tag:    req.GetString("tag", ""),
		Sort:   req.GetString("sort", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) getReferencedBy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := s.svc.ReferencedBy(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("no referencing songs found"), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) searchLyrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchLyrics(ctx, query, req.GetInt("limit", defaultLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits), nil
}

func (s *Server) getSongFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SongFormatContract), nil
}

func (s *Server) readSongFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SongFormatURI,
			MIMEType: "text/markdown",
			Text:     SongFormatContract,
		},
	}, nil
}

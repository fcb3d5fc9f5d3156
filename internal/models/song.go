// Package models defines the domain types for RotomSongs.
package models

import "time"

// Frontmatter is the validated metadata block of a song file.
type Frontmatter struct {
	Title   string   `json:"title"`
	ID      string   `json:"id"`
	Created string   `json:"created"`
	Updated string   `json:"updated"`
	Tags    []string `json:"tags"`
}

// HasTag reports whether tag is present in the frontmatter tags.
func (f Frontmatter) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Map returns the frontmatter as an untyped map with the same keys a YAML
// decoder would produce.
func (f Frontmatter) Map() map[string]any {
	tags := make([]any, len(f.Tags))
	for i, t := range f.Tags {
		tags[i] = t
	}
	return map[string]any{
		"title":   f.Title,
		"id":      f.ID,
		"created": f.Created,
		"updated": f.Updated,
		"tags":    tags,
	}
}

// Original describes the song a parody is based on.
type Original struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Lyrics string `json:"lyrics"`
}

// Song is the canonical record assembled from one markdown file.
type Song struct {
	ID          string      `json:"id"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Lyrics      string      `json:"lyrics"`
	Original    Original    `json:"original"`
	SourceURL   string      `json:"source_url,omitempty"`
	Slug        string      `json:"slug"`
	FileName    string      `json:"file_name"`
	References  []string    `json:"references"`
	Checksum    string      `json:"checksum"`
}

// SongListItem is the lightweight projection used by listings and search.
type SongListItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Created        string   `json:"created"`
	Updated        string   `json:"updated"`
	OriginalArtist string   `json:"original_artist"`
	OriginalTitle  string   `json:"original_title"`
	LyricsPreview  string   `json:"lyrics_preview"`
	Lyrics         string   `json:"lyrics"`
	OriginalLyrics string   `json:"original_lyrics"`
	Tags           []string `json:"tags"`
	Slug           string   `json:"slug"`
	SourceURL      string   `json:"source_url,omitempty"`
}

// Navigation holds the neighbours of a song in catalog order.
// Prev is the newer song, Next the older one.
type Navigation struct {
	Prev *SongListItem `json:"prev"`
	Next *SongListItem `json:"next"`
}

// SongDetail is the full representation served for a single song.
type SongDetail struct {
	Song
	References   []SongListItem `json:"referenced_songs"`
	ReferencedBy []string       `json:"referenced_by"`
	Navigation   Navigation     `json:"navigation"`
}

// FileMeta is returned by storage list operations.
type FileMeta struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

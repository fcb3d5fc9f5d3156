package catalog

import (
	"strings"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

const (
	previewLines = 2
	previewRunes = 100
)

// LyricsPreview joins the first two non-blank lines of lyrics with a space
// and truncates the result to 100 runes. "..." marks a truncated preview.
func LyricsPreview(lyrics string) string {
	var lines []string
	for _, line := range strings.Split(lyrics, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(line, "\r"))
		if len(lines) == previewLines {
			break
		}
	}
	joined := strings.Join(lines, " ")
	runes := []rune(joined)
	if len(runes) <= previewRunes {
		return joined
	}
	return string(runes[:previewRunes]) + "..."
}

// ToListItem projects a Song onto its list representation.
func ToListItem(s models.Song) models.SongListItem {
	tags := s.Frontmatter.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.SongListItem{
		ID:             s.ID,
		Title:          s.Frontmatter.Title,
		Created:        s.Frontmatter.Created,
		Updated:        s.Frontmatter.Updated,
		OriginalArtist: s.Original.Artist,
		OriginalTitle:  s.Original.Title,
		LyricsPreview:  LyricsPreview(s.Lyrics),
		Lyrics:         s.Lyrics,
		OriginalLyrics: s.Original.Lyrics,
		Tags:           tags,
		Slug:           s.Slug,
		SourceURL:      s.SourceURL,
	}
}

// ToListItems projects songs, keeping their order.
func ToListItems(songs []models.Song) []models.SongListItem {
	out := make([]models.SongListItem, len(songs))
	for i, s := range songs {
		out[i] = ToListItem(s)
	}
	return out
}

// Navigate returns the neighbours of id within items. Prev is the entry
// before it (newer), Next the entry after it (older).
func Navigate(items []models.SongListItem, id string) models.Navigation {
	var nav models.Navigation
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if i > 0 {
			prev := items[i-1]
			nav.Prev = &prev
		}
		if i+1 < len(items) {
			next := items[i+1]
			nav.Next = &next
		}
		break
	}
	return nav
}

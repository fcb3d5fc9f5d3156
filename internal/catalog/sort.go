package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

func newerFirst(a, b string) bool {
	na, nb := NumericID(a), NumericID(b)
	if na != nb {
		return na > nb
	}
	return a > b
}

// SortSongsByID orders songs newest first, in place.
func SortSongsByID(songs []models.Song) {
	sort.SliceStable(songs, func(i, j int) bool { return newerFirst(songs[i].ID, songs[j].ID) })
}

// SortItemsByID orders list items newest first, in place.
func SortItemsByID(items []models.SongListItem) {
	sort.SliceStable(items, func(i, j int) bool { return newerFirst(items[i].ID, items[j].ID) })
}

// SortItemsByTitle orders list items by title using Japanese collation.
func SortItemsByTitle(items []models.SongListItem) {
	c := collate.New(language.Japanese)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].Title, items[j].Title) < 0
	})
}

// SortItemsByArtist orders list items by original artist using Japanese
// collation.
func SortItemsByArtist(items []models.SongListItem) {
	c := collate.New(language.Japanese)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].OriginalArtist, items[j].OriginalArtist) < 0
	})
}

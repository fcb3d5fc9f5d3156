package index

import "github.com/jr6v5m2k/rotomsongs/internal/models"

// SongIndex is the persistent mirror used by the song service.
type SongIndex interface {
	UpsertSong(s models.Song) error
	DeleteSong(id string) error
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	ReferencedBy(id string) ([]string, error)
	SearchLyrics(query string, limit int) ([]LyricHit, error)
	Count() (int, error)
	Close() error
}

var _ SongIndex = (*DB)(nil)

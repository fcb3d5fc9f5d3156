package index

import (
	"log/slog"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

// SyncStats reports what a Sync changed.
type SyncStats struct {
	Upserted  int
	Removed   int
	Unchanged int
}

// Sync brings the index up to date with songs:
//   - new or changed songs (by checksum) are upserted
//   - indexed songs missing from songs are deleted
func Sync(db SongIndex, songs []models.Song, logger *slog.Logger) (SyncStats, error) {
	var st SyncStats
	checksums, err := db.AllChecksums()
	if err != nil {
		return st, err
	}

	current := make(map[string]struct{}, len(songs))
	for _, s := range songs {
		current[s.ID] = struct{}{}
		if cs, ok := checksums[s.ID]; ok && cs == s.Checksum {
			st.Unchanged++
			continue
		}
		if err := db.UpsertSong(s); err != nil {
			logger.Warn("sync: index failed", slog.String("id", s.ID), slog.String("error", err.Error()))
			continue
		}
		st.Upserted++
		logger.Debug("sync: indexed", slog.String("id", s.ID))
	}

	for id := range checksums {
		if _, ok := current[id]; ok {
			continue
		}
		if err := db.DeleteSong(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		st.Removed++
		logger.Debug("sync: removed stale", slog.String("id", id))
	}

	return st, nil
}

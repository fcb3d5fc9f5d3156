package search

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

// ErrNotInitialized is returned when the cache is read before any build.
var ErrNotInitialized = errors.New("search: engine not initialized")

// Snapshot is an engine tagged with the build that produced it.
type Snapshot struct {
	ID      string
	BuiltAt time.Time
	Engine  *Engine
}

// Cache holds the current engine snapshot. Builds replace the snapshot
// wholesale; readers never observe a partially built engine.
type Cache struct {
	opts Options
	cur  atomic.Pointer[Snapshot]
}

// NewCache creates an empty cache whose engines use opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts}
}

// Replace builds an engine over items and makes it current.
func (c *Cache) Replace(items []models.SongListItem) *Snapshot {
	snap := &Snapshot{
		ID:      uuid.NewString(),
		BuiltAt: time.Now().UTC(),
		Engine:  New(items, c.opts),
	}
	c.cur.Store(snap)
	return snap
}

// Current returns the latest snapshot, or nil before the first build.
func (c *Cache) Current() *Snapshot {
	return c.cur.Load()
}

// Engine rebuilds from items when any are given and returns the current
// engine. With no items and no prior build it returns ErrNotInitialized.
func (c *Cache) Engine(items []models.SongListItem) (*Engine, error) {
	if items != nil {
		return c.Replace(items).Engine, nil
	}
	snap := c.cur.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	return snap.Engine, nil
}

// QuickSearch runs a one-off search over items and returns the matching
// items in rank order.
func QuickSearch(items []models.SongListItem, query string, limit int) []models.SongListItem {
	results := New(items, Options{}).Search(query, limit)
	out := make([]models.SongListItem, len(results))
	for i, r := range results {
		out[i] = r.Item
	}
	return out
}

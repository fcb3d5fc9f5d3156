package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a song file change.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change is a debounced change to one song file.
type Change struct {
	Kind ChangeKind `json:"kind"`
	ID   string     `json:"id"`
}

// DebounceInterval is how long the watcher waits for quiet before it
// reports a batch of changes.
const DebounceInterval = 200 * time.Millisecond

// ChangeCallback receives each debounced batch, sorted by id.
type ChangeCallback func([]Change)

// merge folds a new event for an id into the pending kind.
func merge(prev, next ChangeKind) ChangeKind {
	switch {
	case prev == "":
		return next
	case prev == ChangeCreated && next == ChangeUpdated:
		return ChangeCreated
	case prev == ChangeDeleted && next != ChangeDeleted:
		return ChangeUpdated
	default:
		return next
	}
}

func kindOf(op fsnotify.Op) (ChangeKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return ChangeCreated, true
	case op&fsnotify.Write != 0:
		return ChangeUpdated, true
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Rename fires on the old path; the new path arrives as Create.
		return ChangeDeleted, true
	}
	return "", false
}

// Watch watches the top level of dir for song file changes until ctx is
// cancelled. Events are collected per id and delivered to cb after
// DebounceInterval of quiet.
func Watch(ctx context.Context, dir string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("dir", dir))

	pending := make(map[string]ChangeKind)
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(DebounceInterval)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(DebounceInterval)
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]Change, 0, len(pending))
		for id, kind := range pending {
			batch = append(batch, Change{Kind: kind, ID: id})
		}
		sort.Slice(batch, func(i, j int) bool { return batch[i].ID < batch[j].ID })
		clear(pending)
		logger.Debug("watcher: changes", slog.Int("count", len(batch)))
		if cb != nil {
			cb(batch)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") {
				continue
			}
			kind, ok := kindOf(ev.Op)
			if !ok {
				continue
			}
			id := strings.TrimSuffix(name, ".md")
			pending[id] = merge(pending[id], kind)
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

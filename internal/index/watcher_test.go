package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu      sync.Mutex
	batches [][]Change
}

func (r *recorder) record(b []Change) {
	r.mu.Lock()
	r.batches = append(r.batches, b)
	r.mu.Unlock()
}

func (r *recorder) seen(kind ChangeKind, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		for _, c := range b {
			if c.Kind == kind && c.ID == id {
				return true
			}
		}
	}
	return false
}

func startWatch(t *testing.T, dir string, rec *recorder) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, dir, logger, rec.record)
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewFileReported(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatch(t, dir, rec)

	_ = os.WriteFile(filepath.Join(dir, "20230101_0000.md"), []byte("# New"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen(ChangeCreated, "20230101_0000")
	}, "expected created:20230101_0000")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, b := range rec.batches {
		for _, c := range b {
			if c.ID == "notes" {
				t.Error("non-markdown file reported")
			}
		}
	}
}

func TestWatcher_DeleteReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20230101_0000.md")
	_ = os.WriteFile(path, []byte("# Delete Me"), 0o644)

	rec := &recorder{}
	startWatch(t, dir, rec)
	_ = os.Remove(path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen(ChangeDeleted, "20230101_0000")
	}, "expected deleted:20230101_0000")
}

func TestWatcher_RenameReportsBothSides(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "20230101_0000.md"), []byte("# Rename"), 0o644)

	rec := &recorder{}
	startWatch(t, dir, rec)
	_ = os.Rename(filepath.Join(dir, "20230101_0000.md"), filepath.Join(dir, "20230102_0000.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen(ChangeDeleted, "20230101_0000") && rec.seen(ChangeCreated, "20230102_0000")
	}, "rename should report the old id deleted and the new id created")
}

func TestMerge(t *testing.T) {
	cases := []struct {
		prev, next, want ChangeKind
	}{
		{"", ChangeUpdated, ChangeUpdated},
		{ChangeCreated, ChangeUpdated, ChangeCreated},
		{ChangeDeleted, ChangeCreated, ChangeUpdated},
		{ChangeUpdated, ChangeDeleted, ChangeDeleted},
	}
	for _, tc := range cases {
		if got := merge(tc.prev, tc.next); got != tc.want {
			t.Errorf("merge(%q, %q) = %q, want %q", tc.prev, tc.next, got, tc.want)
		}
	}
}

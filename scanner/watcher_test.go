package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, root string, cfg WatcherConfig) *Watcher {
	t.Helper()
	if cfg.Debounce == 0 {
		cfg.Debounce = 20 * time.Millisecond
	}
	if cfg.Extensions == nil {
		cfg.Extensions = []string{"xml", "tei"}
	}
	w, err := NewWatcher(root, cfg)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

// waitRescan blocks until at least one rescan fires or the deadline passes.
func waitRescan(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("no rescan after %s", what)
	}
}

func TestNewWatcher_MissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent"), WatcherConfig{})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestNewWatcher_RateLimiter(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t, dir, WatcherConfig{RescansPerMinute: 6})
	if w.limiter == nil {
		t.Error("expected a limiter when a rate cap is set")
	}

	unlimited := newTestWatcher(t, dir, WatcherConfig{RescansPerMinute: 0})
	if unlimited.limiter != nil {
		t.Error("expected no limiter when the cap is 0")
	}
}

func TestWatcher_MatchesExtension(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), WatcherConfig{Extensions: []string{"xml", "TEI"}})

	tests := []struct {
		path string
		want bool
	}{
		{"a.xml", true},
		{"a.XML", true},
		{"b.tei", true},
		{"c.txt", false},
		{"d.xml.bak", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := w.matchesExtension(tt.path); got != tt.want {
			t.Errorf("matchesExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_RescanOnWrite(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.json")

	w := newTestWatcher(t, dir, WatcherConfig{IgnorePaths: []string{reportPath}})

	rescans := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(context.Context) { rescans <- struct{}{} })

	if err := os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<a/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitRescan(t, rescans, "writing a.xml")

	// Drain any extra trigger from the create+write pair
drain:
	for {
		select {
		case <-rescans:
		case <-time.After(200 * time.Millisecond):
			break drain
		}
	}

	// The report written back into the tree must not re-trigger
	if err := os.WriteFile(reportPath, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-rescans:
		t.Fatal("own report write should not trigger a rescan")
	case <-time.After(500 * time.Millisecond):
	}

	// Unscanned extensions must not re-trigger either
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-rescans:
		t.Fatal("non-matching extension should not trigger a rescan")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t, dir, WatcherConfig{})

	rescans := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(context.Context) { rescans <- struct{}{} })

	sub := filepath.Join(dir, "new")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitRescan(t, rescans, "creating a directory")

	// Files inside the new directory are seen because the watch follows it
	if err := os.WriteFile(filepath.Join(sub, "b.xml"), []byte("<b/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitRescan(t, rescans, "writing inside the new directory")
}

func TestWatcher_RemoveTriggers(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.xml")
	if err := os.WriteFile(target, []byte("<a/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t, dir, WatcherConfig{})

	rescans := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(context.Context) { rescans <- struct{}{} })

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	waitRescan(t, rescans, "removing a.xml")
}

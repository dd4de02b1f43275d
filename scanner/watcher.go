package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/quenby/xskel/errors"
	"github.com/quenby/xskel/logger"
)

// RescanFunc is called after the debounce window closes on a batch of
// filesystem changes. The watcher serializes calls: a rescan never
// overlaps the previous one.
type RescanFunc func(ctx context.Context)

// WatcherConfig configures a directory watcher
type WatcherConfig struct {
	Debounce         time.Duration // Quiet period before a rescan fires
	RescansPerMinute int           // Rate cap: 0 = unlimited
	Extensions       []string      // File extensions whose writes trigger rescans
	IgnorePaths      []string      // Paths whose events are skipped (the report written into the tree)
}

// Watcher rescans a directory tree when files under it change.
// fsnotify only watches single directories, so every directory in the
// tree gets its own watch, and directories created later are added as
// their create events arrive.
type Watcher struct {
	root       string
	fs         *fsnotify.Watcher
	debounce   time.Duration
	limiter    *rate.Limiter
	extensions map[string]struct{}
	ignore     map[string]struct{}
	logger     *zap.SugaredLogger

	mu            sync.Mutex
	debounceTimer *time.Timer
	trigger       chan struct{}
}

// NewWatcher creates a watcher over root with watches registered for
// every directory currently in the tree.
func NewWatcher(root string, cfg WatcherConfig) (*Watcher, error) {
	if err := validateRoot(root); err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	var limiter *rate.Limiter
	if cfg.RescansPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RescansPerMinute)/60.0), 1)
	}

	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	ignore := make(map[string]struct{}, len(cfg.IgnorePaths))
	for _, p := range cfg.IgnorePaths {
		if abs, err := filepath.Abs(p); err == nil {
			ignore[abs] = struct{}{}
		}
	}

	w := &Watcher{
		root:       root,
		fs:         fs,
		debounce:   cfg.Debounce,
		limiter:    limiter,
		extensions: extensions,
		ignore:     ignore,
		logger:     logger.ComponentLogger("watcher"),
		trigger:    make(chan struct{}, 1),
	}

	if err := w.addDirTree(root); err != nil {
		fs.Close()
		return nil, err
	}

	return w, nil
}

// addDirTree registers a watch on dir and every directory below it.
// The watch covers the whole tree even when max_depth trims the scan;
// an out-of-depth change costs one no-op rescan.
func (w *Watcher) addDirTree(dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warnw("Skipping unreadable directory",
			logger.FieldPath, dir,
			"error", err)
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.addDirTree(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}

	return nil
}

// Run watches for changes and invokes rescan after each debounced,
// rate-limited batch. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, rescan RescanFunc) error {
	go w.rescanLoop(ctx, rescan)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error",
				"error", err)
		}
	}
}

// handleEvent decides whether a filesystem event warrants a rescan.
//
//   - chmod-only events never do
//   - ignored paths (our own report writes) never do, preventing the
//     write-report/detect-change/rescan loop
//   - a created directory is watched from now on and triggers a rescan
//   - writes and creates trigger only for extensions the scan reads
//   - removes and renames always trigger: the vanished path cannot be
//     stat'ed, so a directory is indistinguishable from a file
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if w.ignored(event.Name) {
		w.logger.Debugw("Watcher ignoring own write",
			logger.FieldPath, event.Name)
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirTree(event.Name); err != nil {
				w.logger.Warnw("Failed to watch new directory",
					logger.FieldPath, event.Name,
					"error", err)
			}
			w.scheduleRescan()
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && !w.matchesExtension(event.Name) {
		return
	}

	w.logger.Debugw("Watcher detected change",
		logger.FieldPath, event.Name,
		"op", event.Op.String())
	w.scheduleRescan()
}

// scheduleRescan debounces rapid file changes and fires the trigger
func (w *Watcher) scheduleRescan() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		// Coalesce: a pending trigger already covers this batch
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

// rescanLoop serializes rescans and applies the rate limit
func (w *Watcher) rescanLoop(ctx context.Context, rescan RescanFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}

		if w.limiter != nil {
			if !w.limiter.Allow() {
				w.logger.Infow("Rescan rate cap reached, waiting")
				if err := w.limiter.Wait(ctx); err != nil {
					return
				}
			}
		}

		rescan(ctx)
	}
}

// Stop stops watching for changes
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := w.ignore[abs]
	return ok
}

func (w *Watcher) matchesExtension(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	_, ok := w.extensions[ext]
	return ok
}

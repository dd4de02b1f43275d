package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/quenby/xskel/errors"
	"github.com/quenby/xskel/logger"
)

// walkParallelism bounds concurrent directory reads during discovery.
// Parsing dominates the scan, so discovery needs only a small pool.
const walkParallelism = 8

// discover walks root and streams matching file paths into out, counting
// each dispatched path in discovered. Unreadable subdirectories are
// logged and skipped; an unreadable root is fatal. Returns early with
// the context error once ctx is cancelled.
//
// The caller owns out and must close it after discover returns.
func (s *Scanner) discover(ctx context.Context, root string, out chan<- string, discovered *atomic.Int64) error {
	extensions := make(map[string]struct{}, len(s.opts.Extensions))
	for _, ext := range s.opts.Extensions {
		extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(walkParallelism)

	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		default:
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if depth == 0 {
				return errors.Wrapf(err, "failed to read scan root %q", dir)
			}
			logger.Warnw("skipping unreadable directory",
				logger.FieldPath, dir,
				logger.FieldError, err.Error(),
			)
			return nil
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				if s.opts.MaxDepth > 0 && depth+1 >= s.opts.MaxDepth {
					continue
				}
				child := path
				childDepth := depth + 1
				// TryGo falls back to walking inline when the pool is
				// saturated. Recursing through g.Go alone can deadlock
				// once every slot is itself waiting on a slot.
				if !g.TryGo(func() error { return walk(child, childDepth) }) {
					if err := walk(child, childDepth); err != nil {
						return err
					}
				}
				continue
			}

			// Symlinks and other irregular entries are skipped, matching
			// a non-following walk.
			if !entry.Type().IsRegular() {
				continue
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))
			if _, ok := extensions[ext]; !ok {
				continue
			}

			select {
			case out <- path:
				discovered.Add(1)
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		return nil
	}

	g.Go(func() error { return walk(root, 0) })

	return g.Wait()
}

// validateRoot confirms the scan root exists and is a directory.
func validateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("directory does not exist: %s", root)
		}
		return errors.Wrapf(err, "failed to access directory %s", root)
	}
	if !info.IsDir() {
		return errors.Newf("path is not a directory: %s", root)
	}
	return nil
}

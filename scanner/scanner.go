// Package scanner orchestrates the scan pipeline: discover XML files
// under a root directory, parse each one into a structural skeleton on
// a worker pool, group identical skeletons, and assemble the report.
package scanner

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/quenby/xskel/grouping"
	"github.com/quenby/xskel/logger"
	"github.com/quenby/xskel/skeleton"
	"github.com/quenby/xskel/xmltree"
)

// progressInterval is how often the ticker goroutine forwards counter
// state to the progress emitter. Emission never runs on worker
// goroutines, so a slow terminal cannot stall parsing.
const progressInterval = 120 * time.Millisecond

// Options configures a scan run.
type Options struct {
	// Workers is the parse pool size. 0 means runtime.NumCPU().
	Workers int `json:"workers"`

	// MaxDepth limits directory recursion. 0 means unlimited; 1 scans
	// only files directly under the root.
	MaxDepth int `json:"max_depth"`

	// Extensions lists the file extensions to scan, without dots.
	Extensions []string `json:"extensions"`

	// KeepNamespacePrefix keys element and attribute names by their
	// resolved namespace instead of collapsing to local names.
	KeepNamespacePrefix bool `json:"keep_namespace_prefix"`

	// MaxElementDepth bounds element nesting per document. 0 applies
	// the parser default.
	MaxElementDepth int `json:"max_element_depth"`

	// IncludePaths controls whether per-group file lists appear in the
	// report.
	IncludePaths bool `json:"include_paths"`

	// IncludeMerged adds a merged-skeleton summary to each group.
	IncludeMerged bool `json:"include_merged"`
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Workers:      0, // auto-detect
		MaxDepth:     0, // unlimited
		Extensions:   []string{"xml", "tei"},
		IncludePaths: true,
	}
}

// Scanner runs scans with a fixed option set. Safe to reuse across runs.
type Scanner struct {
	opts    Options
	emitter ProgressEmitter
	logger  *zap.SugaredLogger
}

// New creates a scanner. A nil emitter disables progress reporting.
func New(opts Options, emitter ProgressEmitter) *Scanner {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Scanner{
		opts:    opts,
		emitter: emitter,
		logger:  logger.ComponentLogger("scanner"),
	}
}

// Run scans root and returns the structural grouping report.
//
// Per-file failures (unreadable or malformed documents) never abort the
// run; they are recorded in the report. A missing or unreadable root is
// the only fatal filesystem error. Cancelling ctx stops discovery,
// lets in-flight files finish, and returns the partial report together
// with the context error.
func (s *Scanner) Run(ctx context.Context, root string) (*Report, error) {
	if err := validateRoot(root); err != nil {
		return nil, err
	}

	workers := s.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if warning := checkMemoryPressure(workers); warning != "" {
		s.logger.Warnw("memory pressure warning",
			"warning", warning,
			logger.FieldWorkers, workers,
		)
	}

	start := time.Now()
	s.logger.Infow("starting scan",
		logger.FieldRoot, root,
		logger.FieldWorkers, workers,
	)
	s.emitter.EmitStage("scan", "discovering and parsing files under "+root)

	table := grouping.NewTable()
	paths := make(chan string, workers*2)

	var discovered, completed atomic.Int64
	var failMu sync.Mutex
	var failures []Failure

	walkDone := make(chan error, 1)
	go func() {
		walkDone <- s.discover(ctx, root, paths, &discovered)
		close(paths)
	}()

	tickerStop := make(chan struct{})
	var tickerWg sync.WaitGroup
	tickerWg.Add(1)
	go func() {
		defer tickerWg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-tickerStop:
				return
			case <-ticker.C:
				s.emitter.EmitScanned(int(completed.Load()), int(discovered.Load()))
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				if err := s.processFile(path, table); err != nil {
					failMu.Lock()
					failures = append(failures, Failure{File: path, Error: err.Error()})
					failMu.Unlock()
					s.logger.Debugw("file failed",
						logger.FieldFile, path,
						logger.FieldError, err.Error(),
					)
				}
				completed.Add(1)
			}
		}()
	}

	wg.Wait()
	walkErr := <-walkDone
	close(tickerStop)
	tickerWg.Wait()

	s.emitter.EmitScanned(int(completed.Load()), int(discovered.Load()))

	if err := table.CollisionError(); err != nil {
		s.logger.Warnw("hash collisions detected",
			logger.FieldCount, table.Collisions(),
			logger.FieldError, err.Error(),
		)
	}
	if len(failures) > 0 {
		s.logger.Warnw("some files failed to parse",
			logger.FieldFailures, len(failures),
		)
	}

	report := BuildReport(table, failures, s.opts)

	if ctx.Err() != nil {
		s.emitter.EmitError("scan", ctx.Err())
		return report, ctx.Err()
	}
	if walkErr != nil {
		s.emitter.EmitError("scan", walkErr)
		return report, walkErr
	}

	s.logger.Infow("scan completed",
		logger.FieldFiles, report.TotalFiles,
		logger.FieldUnique, report.UniqueStructures,
		logger.FieldFailures, len(report.Failures),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	s.emitter.EmitComplete(map[string]interface{}{
		"total_files":       report.TotalFiles,
		"unique_structures": report.UniqueStructures,
		"failures":          len(report.Failures),
	})

	return report, nil
}

// processFile reads and parses one document and files its signature
// into the grouping table.
func (s *Scanner) processFile(path string, table *grouping.Table) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	root, err := xmltree.Parse(data, xmltree.Options{
		KeepNamespace: s.opts.KeepNamespacePrefix,
		MaxDepth:      s.opts.MaxElementDepth,
	})
	if err != nil {
		return err
	}

	table.Add(path, skeleton.New(root), root)
	return nil
}

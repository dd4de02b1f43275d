// Package history persists one row per scan run in a local SQLite
// database, enough to list past runs and to verify that rescanning a
// corpus reproduced the same structural grouping.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/quenby/xskel/errors"
)

// SchemaVersion is stamped into every recorded run. Readers compare
// majors: a row written by a newer major schema is flagged rather than
// silently misread.
const SchemaVersion = "1.0.0"

var currentSchema = semver.MustParse(SchemaVersion)

// SQLiteBusyTimeoutMS is how long a locked database is retried before
// an operation fails.
const SQLiteBusyTimeoutMS = 5000

// Run is one recorded scan.
type Run struct {
	ID               string    `json:"id"`
	Root             string    `json:"root"`
	StartedAt        time.Time `json:"started_at"`
	DurationMs       int64     `json:"duration_ms"`
	TotalFiles       int       `json:"total_files"`
	UniqueStructures int       `json:"unique_structures"`
	FailureCount     int       `json:"failure_count"`
	ReportSHA256     string    `json:"report_sha256"`
	ToolVersion      string    `json:"tool_version"`
	SchemaVersion    string    `json:"schema_version"`
}

// Store reads and writes run history.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// Open opens (creating if necessary) the history database at path and
// applies pending migrations. If logger is provided, logs database
// operations; otherwise operates silently.
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create history directory %s", dir)
		}
	}

	db, err := openDatabase(path, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

// NewStore wraps an existing database handle. The caller is responsible
// for migrations; Open is the usual entry point.
func NewStore(db *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger}
}

// openDatabase opens a SQLite database with settings tuned for a small
// append-mostly store: WAL for concurrent reads during writes, plus a
// busy timeout so a watch rescan never fails on a momentary lock.
func openDatabase(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening history database", "path", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history database")
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", SQLiteBusyTimeoutMS)); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	if logger != nil {
		logger.Infow("History database opened",
			"path", path,
			"wal_mode", true,
		)
	}

	return db, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts one run. A missing ID, start time, or schema
// version is filled in.
func (s *Store) RecordRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.SchemaVersion == "" {
		run.SchemaVersion = SchemaVersion
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (
			id, root, started_at, duration_ms,
			total_files, unique_structures, failure_count,
			report_sha256, tool_version, schema_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.StartedAt, run.DurationMs,
		run.TotalFiles, run.UniqueStructures, run.FailureCount,
		run.ReportSHA256, run.ToolVersion, run.SchemaVersion,
	)
	if err != nil {
		return errors.Wrap(err, "failed to record run")
	}

	if s.logger != nil {
		s.logger.Debugw("Recorded run",
			"run_id", run.ID,
			"root", run.Root,
			"total_files", run.TotalFiles,
		)
	}

	return nil
}

// ListRuns returns runs newest first. A non-empty root filters to that
// scan root; limit <= 0 means no limit.
func (s *Store) ListRuns(root string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}

	var rows *sql.Rows
	var err error
	if root == "" {
		rows, err = s.db.Query(selectRuns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(selectRuns+` WHERE root = ? ORDER BY started_at DESC, rowid DESC LIMIT ?`, root, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(
			&run.ID, &run.Root, &run.StartedAt, &run.DurationMs,
			&run.TotalFiles, &run.UniqueStructures, &run.FailureCount,
			&run.ReportSHA256, &run.ToolVersion, &run.SchemaVersion,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan run row")
		}
		s.flagNewerSchema(run)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate runs")
	}

	return runs, nil
}

const selectRuns = `
	SELECT id, root, started_at, duration_ms,
		total_files, unique_structures, failure_count,
		report_sha256, tool_version, schema_version
	FROM runs`

// LastTwo returns up to the two most recent runs for root, newest first.
func (s *Store) LastTwo(root string) ([]*Run, error) {
	return s.ListRuns(root, 2)
}

// VerifyResult compares the two most recent runs of one root.
type VerifyResult struct {
	Matched  bool `json:"matched"`
	Latest   *Run `json:"latest"`
	Previous *Run `json:"previous"`
}

// Verify checks whether the two most recent runs for root produced the
// same report digest, meaning the corpus grouping is unchanged.
func (s *Store) Verify(root string) (*VerifyResult, error) {
	runs, err := s.LastTwo(root)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, errors.Newf("need at least two recorded runs for %s, found %d", root, len(runs))
	}

	return &VerifyResult{
		Matched:  runs[0].ReportSHA256 == runs[1].ReportSHA256,
		Latest:   runs[0],
		Previous: runs[1],
	}, nil
}

// flagNewerSchema warns when a row was written by a newer major schema
// than this binary understands.
func (s *Store) flagNewerSchema(run *Run) {
	if s.logger == nil {
		return
	}

	recorded, err := semver.NewVersion(run.SchemaVersion)
	if err != nil {
		s.logger.Warnw("Run has unparseable schema version",
			"run_id", run.ID,
			"schema_version", run.SchemaVersion,
		)
		return
	}

	if recorded.Major() > currentSchema.Major() {
		s.logger.Warnw("Run was recorded by a newer schema version",
			"run_id", run.ID,
			"schema_version", run.SchemaVersion,
			"supported", SchemaVersion,
		)
	}
}

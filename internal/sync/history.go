package sync

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run status values for the sync_runs table.
const (
	RunStatusOK     = "ok"
	RunStatusNoop   = "noop"
	RunStatusFailed = "failed"
)

// RunRecord is one row of sync run history.
type RunRecord struct {
	ID               int64
	StartedAt        time.Time
	FinishedAt       time.Time
	Source           string
	Dest             string
	PagesExported    int
	PagesExcluded    int
	PagesSelected    int
	BatchesDone      int
	BatchesTotal     int
	CheckpointBefore int64
	CheckpointAfter  int64
	Status           string
	Error            string
}

// History is a SQLite-backed ledger of past sync runs, so an operator can
// see what happened without scraping logs. Writes are best-effort from the
// engine's perspective; the ledger is never load-bearing for correctness.
type History struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenHistory opens (creating if necessary) the history database at path
// and applies pending schema migrations. Use ":memory:" for tests.
func OpenHistory(ctx context.Context, path string, logger *slog.Logger) (*History, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db %s: %w", path, err)
	}

	// Single writer; avoids SQLITE_BUSY from connection pooling.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &History{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// RecordRun inserts one run row.
func (h *History) RecordRun(ctx context.Context, rec *RunRecord) error {
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO sync_runs
			(started_at, finished_at, source, dest,
			 pages_exported, pages_excluded, pages_selected,
			 batches_done, batches_total,
			 checkpoint_before, checkpoint_after, status, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Unix(), rec.FinishedAt.UTC().Unix(),
		rec.Source, rec.Dest,
		rec.PagesExported, rec.PagesExcluded, rec.PagesSelected,
		rec.BatchesDone, rec.BatchesTotal,
		rec.CheckpointBefore, rec.CheckpointAfter, rec.Status, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting run record: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}

	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (h *History) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, source, dest,
			pages_exported, pages_excluded, pages_selected,
			batches_done, batches_total,
			checkpoint_before, checkpoint_after, status, error
			FROM sync_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord

	for rows.Next() {
		var (
			rec                   RunRecord
			startedAt, finishedAt int64
		)

		if err := rows.Scan(&rec.ID, &startedAt, &finishedAt, &rec.Source, &rec.Dest,
			&rec.PagesExported, &rec.PagesExcluded, &rec.PagesSelected,
			&rec.BatchesDone, &rec.BatchesTotal,
			&rec.CheckpointBefore, &rec.CheckpointAfter, &rec.Status, &rec.Error); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}

		rec.StartedAt = time.Unix(startedAt, 0).UTC()
		rec.FinishedAt = time.Unix(finishedAt, 0).UTC()
		runs = append(runs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run history: %w", err)
	}

	return runs, nil
}

// runMigrations applies all pending schema migrations to the database.
// Uses the goose v3 Provider API (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

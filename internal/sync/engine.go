package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scrapsync/scrapsync/internal/scrapbox"
)

// Exporter retrieves the full page snapshot of a project.
// Implemented by *scrapbox.Client; tests inject fakes.
type Exporter interface {
	Export(ctx context.Context, project string) (*scrapbox.Export, error)
}

// Importer replicates pages into a project.
// Implemented by *scrapbox.Client; tests inject fakes.
type Importer interface {
	Import(ctx context.Context, project string, pages []scrapbox.Page) error
}

// EngineConfig holds the collaborators and options for one Engine.
type EngineConfig struct {
	Source string
	Dest   string

	Exporter    Exporter
	Importer    Importer
	Checkpoints CheckpointStore
	Filter      *Filter
	Batches     *BatchImporter
	History     *History // optional; run recording is best-effort
	Logger      *slog.Logger

	// Progress observes per-batch outcomes for user-facing reporting.
	Progress ProgressFunc

	// DryRun previews the delta without importing or touching the checkpoint.
	DryRun bool

	// Full ignores the checkpoint when selecting pages. The checkpoint is
	// still advanced on success.
	Full bool
}

// Report summarizes one sync run.
type Report struct {
	Source           string        `json:"source"`
	Dest             string        `json:"dest"`
	PagesExported    int           `json:"pages_exported"`
	PagesExcluded    int           `json:"pages_excluded"`
	PagesSelected    int           `json:"pages_selected"`
	BatchesDone      int           `json:"batches_done"`
	BatchesTotal     int           `json:"batches_total"`
	CheckpointBefore int64         `json:"checkpoint_before"`
	CheckpointAfter  int64         `json:"checkpoint_after"`
	Duration         time.Duration `json:"duration_ns"`
	DryRun           bool          `json:"dry_run"`
	NoOp             bool          `json:"noop"`
}

// Engine composes export, filter, selection, batched import, and checkpoint
// advancement into one end-to-end run. The checkpoint only advances when
// every batch succeeded, so a failed or interrupted run is safely re-runnable.
type Engine struct {
	cfg    EngineConfig
	logger *slog.Logger
}

// NewEngine validates the configuration and creates an Engine.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	switch {
	case cfg.Source == "":
		return nil, fmt.Errorf("sync: source project is required")
	case cfg.Dest == "":
		return nil, fmt.Errorf("sync: destination project is required")
	case cfg.Exporter == nil:
		return nil, fmt.Errorf("sync: exporter is required")
	case cfg.Importer == nil && !cfg.DryRun:
		return nil, fmt.Errorf("sync: importer is required")
	case cfg.Checkpoints == nil:
		return nil, fmt.Errorf("sync: checkpoint store is required")
	case cfg.Batches == nil:
		return nil, fmt.Errorf("sync: batch importer is required")
	}

	if cfg.Filter == nil {
		cfg.Filter = NewFilter("")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{cfg: *cfg, logger: logger}, nil
}

// Run executes one incremental sync. Steps: export the source snapshot,
// drop excluded pages, select pages updated after the checkpoint, import
// the delta in batches, then advance the checkpoint to the delta's maximum
// Updated value. An empty delta is the normal steady-state outcome and
// leaves the checkpoint untouched.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	started := time.Now()

	report := &Report{
		Source: e.cfg.Source,
		Dest:   e.cfg.Dest,
		DryRun: e.cfg.DryRun,
	}

	err := e.run(ctx, report)
	report.Duration = time.Since(started)

	e.recordRun(ctx, started, report, err)

	if err != nil {
		return nil, err
	}

	return report, nil
}

func (e *Engine) run(ctx context.Context, report *Report) error {
	export, err := e.cfg.Exporter.Export(ctx, e.cfg.Source)
	if err != nil {
		return err
	}

	report.PagesExported = len(export.Pages)

	eligible := e.cfg.Filter.Apply(export.Pages)
	report.PagesExcluded = len(export.Pages) - len(eligible)

	checkpoint, err := e.cfg.Checkpoints.Load()
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}

	report.CheckpointBefore = checkpoint
	report.CheckpointAfter = checkpoint

	since := checkpoint
	if e.cfg.Full {
		// Select every eligible page regardless of the watermark.
		since = -1
	}

	delta := SelectChanges(eligible, since)
	report.PagesSelected = len(delta)

	e.logger.Info("computed delta",
		slog.String("source", e.cfg.Source),
		slog.Int("exported", report.PagesExported),
		slog.Int("excluded", report.PagesExcluded),
		slog.Int("selected", len(delta)),
		slog.Int64("checkpoint", checkpoint),
	)

	if len(delta) == 0 {
		report.NoOp = true
		return nil
	}

	report.BatchesTotal = (len(delta) + e.cfg.Batches.size - 1) / e.cfg.Batches.size

	if e.cfg.DryRun {
		return nil
	}

	e.cfg.Batches.SetProgress(func(batch, total, pages int, err error) {
		if err == nil {
			report.BatchesDone++
		}

		if e.cfg.Progress != nil {
			e.cfg.Progress(batch, total, pages, err)
		}
	})

	importOne := func(ctx context.Context, pages []scrapbox.Page) error {
		return e.cfg.Importer.Import(ctx, e.cfg.Dest, pages)
	}

	if err := e.cfg.Batches.Run(ctx, delta, importOne); err != nil {
		return err
	}

	newCheckpoint := maxUpdated(delta)
	if newCheckpoint < checkpoint {
		// Full mode can select pages older than the watermark; never
		// roll it back.
		newCheckpoint = checkpoint
	}

	if err := e.cfg.Checkpoints.Save(newCheckpoint); err != nil {
		// The imports happened but are not durably recorded; the next run
		// re-attempts the same delta (at-least-once on this edge).
		return fmt.Errorf("saving checkpoint %d: %w", newCheckpoint, err)
	}

	report.CheckpointAfter = newCheckpoint

	e.logger.Info("sync complete",
		slog.String("dest", e.cfg.Dest),
		slog.Int("pages", len(delta)),
		slog.Int("batches", report.BatchesTotal),
		slog.Int64("checkpoint", newCheckpoint),
	)

	return nil
}

// recordRun appends the run to the history ledger. Best-effort: a history
// failure never fails the sync itself.
func (e *Engine) recordRun(ctx context.Context, started time.Time, report *Report, runErr error) {
	if e.cfg.History == nil || e.cfg.DryRun {
		return
	}

	rec := &RunRecord{
		StartedAt:        started,
		FinishedAt:       time.Now(),
		Source:           report.Source,
		Dest:             report.Dest,
		PagesExported:    report.PagesExported,
		PagesExcluded:    report.PagesExcluded,
		PagesSelected:    report.PagesSelected,
		BatchesDone:      report.BatchesDone,
		BatchesTotal:     report.BatchesTotal,
		CheckpointBefore: report.CheckpointBefore,
		CheckpointAfter:  report.CheckpointAfter,
	}

	switch {
	case runErr != nil:
		rec.Status = RunStatusFailed
		rec.Error = runErr.Error()
	case report.NoOp:
		rec.Status = RunStatusNoop
	default:
		rec.Status = RunStatusOK
	}

	if err := e.cfg.History.RecordRun(ctx, rec); err != nil {
		e.logger.Warn("failed to record run history", slog.String("error", err.Error()))
	}
}

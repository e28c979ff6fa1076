package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrapsync/scrapsync/internal/config"
	"github.com/scrapsync/scrapsync/internal/scrapbox"
	"github.com/scrapsync/scrapsync/internal/sync"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one incremental sync from source to destination",
		Long: `Export the source project, drop private pages, select pages updated since
the last successful run, and import them into the destination project in
paced batches. The checkpoint only advances when every batch succeeds, so a
failed run is always safe to re-run.`,
		RunE: runSync,
	}

	cmd.Flags().Bool("dry-run", false, "compute and report the delta without importing")
	cmd.Flags().Bool("full", false, "ignore the checkpoint and sync every eligible page")
	cmd.Flags().String("source", "", "source project name")
	cmd.Flags().String("dest", "", "destination project name")
	cmd.Flags().Int("batch-size", 0, "pages per import call")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	cfg := cc.Cfg
	logger := cc.Logger

	applySyncFlags(cmd, cfg)

	if err := config.ValidateRemote(cfg); err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	full, _ := cmd.Flags().GetBool("full")

	client := scrapbox.NewClient(baseURL(cfg), defaultHTTPClient(), cfg.Session, logger)

	batches, err := sync.NewBatchImporter(cfg.BatchSize, cfg.BatchPause, logger)
	if err != nil {
		return err
	}

	history := openHistory(cmd, cfg, logger, dryRun)
	if history != nil {
		defer history.Close()
	}

	engine, err := sync.NewEngine(&sync.EngineConfig{
		Source:      cfg.SourceProject,
		Dest:        cfg.DestProject,
		Exporter:    client,
		Importer:    client,
		Checkpoints: sync.NewFileCheckpointStore(cfg.CheckpointPath(), logger),
		Filter:      sync.NewFilter(cfg.ExcludeMarker),
		Batches:     batches,
		History:     history,
		Logger:      logger,
		Progress:    batchProgress(cc),
		DryRun:      dryRun,
		Full:        full,
	})
	if err != nil {
		return err
	}

	report, err := engine.Run(cmd.Context())
	if err != nil {
		return err
	}

	return printSyncReport(cc, report)
}

// applySyncFlags copies explicitly-set sync flags onto the resolved config.
func applySyncFlags(cmd *cobra.Command, cfg *config.Resolved) {
	if cmd.Flags().Changed("source") {
		cfg.SourceProject, _ = cmd.Flags().GetString("source")
	}

	if cmd.Flags().Changed("dest") {
		cfg.DestProject, _ = cmd.Flags().GetString("dest")
	}

	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	}
}

// openHistory opens the run history ledger. Failures degrade to logging:
// history is operator convenience, never a reason to refuse a sync.
func openHistory(cmd *cobra.Command, cfg *config.Resolved, logger *slog.Logger, dryRun bool) *sync.History {
	if dryRun {
		return nil
	}

	history, err := sync.OpenHistory(cmd.Context(), cfg.HistoryPath(), logger)
	if err != nil {
		logger.Warn("run history unavailable",
			slog.String("path", cfg.HistoryPath()),
			slog.String("error", err.Error()),
		)

		return nil
	}

	return history
}

// batchProgress returns a per-batch observer printing progress to stderr.
// On a terminal every batch is reported; otherwise (cron, pipes) only
// failures are, to keep captured logs quiet.
func batchProgress(cc *CLIContext) sync.ProgressFunc {
	interactive := isTerminal(os.Stderr)

	return func(batch, total, pages int, err error) {
		switch {
		case err != nil:
			cc.Statusf("batch %d/%d failed: %v\n", batch, total, err)
		case interactive:
			cc.Statusf("batch %d/%d imported (%d pages)\n", batch, total, pages)
		}
	}
}

// printSyncReport renders the final run summary.
func printSyncReport(cc *CLIContext, report *sync.Report) error {
	if cc.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	switch {
	case report.NoOp:
		cc.Statusf("Nothing to sync: no pages updated since checkpoint %d.\n", report.CheckpointBefore)
	case report.DryRun:
		cc.Statusf("Dry run: %d of %d pages would sync to %q in %d batches (%d excluded).\n",
			report.PagesSelected, report.PagesExported, report.Dest, report.BatchesTotal, report.PagesExcluded)
	default:
		cc.Statusf("Synced %d pages to %q in %d batches; checkpoint %d -> %d (%s).\n",
			report.PagesSelected, report.Dest, report.BatchesTotal,
			report.CheckpointBefore, report.CheckpointAfter, formatDuration(report.Duration))
	}

	return nil
}

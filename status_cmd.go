package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrapsync/scrapsync/internal/sync"
)

// recentRunLimit caps how many history rows status displays.
const recentRunLimit = 10

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current checkpoint and recent sync runs",
		Long: `Display the checkpoint watermark and the most recent sync runs from the
run history. Read-only: never seeds a checkpoint or contacts the remote
service.`,
		RunE: runStatus,
	}
}

// statusReport is the JSON shape of the status output.
type statusReport struct {
	Checkpoint    int64            `json:"checkpoint"`
	CheckpointSet bool             `json:"checkpoint_set"`
	Runs          []sync.RunRecord `json:"runs"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	cfg := cc.Cfg

	checkpoints := sync.NewFileCheckpointStore(cfg.CheckpointPath(), cc.Logger)

	checkpoint, ok, err := checkpoints.Peek()
	if err != nil {
		return err
	}

	report := statusReport{Checkpoint: checkpoint, CheckpointSet: ok}

	// Only read history if the database already exists; opening it would
	// otherwise create an empty one as a side effect of a read command.
	if _, statErr := os.Stat(cfg.HistoryPath()); statErr == nil {
		history, err := sync.OpenHistory(cmd.Context(), cfg.HistoryPath(), cc.Logger)
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer history.Close()

		runs, err := history.RecentRuns(cmd.Context(), recentRunLimit)
		if err != nil {
			return err
		}

		report.Runs = runs
	}

	if cc.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	printStatusText(&report)

	return nil
}

func printStatusText(report *statusReport) {
	if report.CheckpointSet {
		fmt.Printf("Checkpoint: %d (%s)\n", report.Checkpoint, formatUnix(report.Checkpoint))
	} else {
		fmt.Println("Checkpoint: not set (next sync seeds the default)")
	}

	if len(report.Runs) == 0 {
		fmt.Println("No sync runs recorded.")
		return
	}

	fmt.Printf("\nRecent runs:\n")

	for _, run := range report.Runs {
		line := fmt.Sprintf("  %s  %-6s  %s -> %s  %d pages, %d/%d batches",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Status,
			run.Source, run.Dest, run.PagesSelected, run.BatchesDone, run.BatchesTotal)

		if run.Status == sync.RunStatusFailed && run.Error != "" {
			line += "  (" + run.Error + ")"
		}

		fmt.Println(line)
	}
}

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scrapsync/scrapsync/internal/scrapbox"
)

// Batch sizing and pacing defaults. One import call per batch; the pause
// between batches respects the import endpoint's implicit rate limits.
const (
	DefaultBatchSize  = 100
	DefaultBatchPause = 1 * time.Second
)

// ImportFunc replicates one batch of pages. Each call is atomic from the
// pipeline's point of view: it fully succeeds or fails as a unit.
type ImportFunc func(ctx context.Context, pages []scrapbox.Page) error

// ProgressFunc observes each batch outcome before the next batch starts.
// batch is 1-based; err is nil on success.
type ProgressFunc func(batch, total, pages int, err error)

// BatchError annotates a batch import failure with the 1-based ordinal of
// the failing batch and the total batch count.
type BatchError struct {
	Batch int
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d/%d: %v", e.Batch, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// BatchImporter partitions a page set into fixed-size batches and replicates
// them strictly sequentially, pausing between batches. The import endpoint
// is the shared bottleneck; running batches concurrently would risk its
// undocumented rate limits and muddy failure attribution.
type BatchImporter struct {
	size     int
	pause    time.Duration
	logger   *slog.Logger
	progress ProgressFunc

	// sleepFunc implements the inter-batch pause. Defaults to pauseSleep.
	// Tests override this to avoid real delays.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewBatchImporter creates a BatchImporter. A non-positive size is a
// configuration error.
func NewBatchImporter(size int, pause time.Duration, logger *slog.Logger) (*BatchImporter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &BatchImporter{
		size:      size,
		pause:     pause,
		logger:    logger,
		sleepFunc: pauseSleep,
	}, nil
}

// SetProgress registers an observer called after every batch attempt,
// successful or not, before the next batch is issued.
func (b *BatchImporter) SetProgress(fn ProgressFunc) {
	b.progress = fn
}

// Run partitions pages and imports each batch in order via importOne.
// On the first failure the remaining batches are abandoned and the error is
// returned wrapped in *BatchError. A pacing pause follows every batch
// except the last.
func (b *BatchImporter) Run(ctx context.Context, pages []scrapbox.Page, importOne ImportFunc) error {
	batches := partition(pages, b.size)
	total := len(batches)

	for i, batch := range batches {
		ordinal := i + 1

		b.logger.Info("importing batch",
			slog.Int("batch", ordinal),
			slog.Int("total", total),
			slog.Int("pages", len(batch)),
		)

		err := importOne(ctx, batch)

		if b.progress != nil {
			b.progress(ordinal, total, len(batch), err)
		}

		if err != nil {
			return &BatchError{Batch: ordinal, Total: total, Err: err}
		}

		if ordinal < total {
			if err := b.sleepFunc(ctx, b.pause); err != nil {
				return fmt.Errorf("pacing pause canceled: %w", err)
			}
		}
	}

	return nil
}

// partition splits pages into contiguous slices of at most size elements.
// The final batch may be smaller. Sub-slices alias the input; no page is
// copied, duplicated, or reordered.
func partition(pages []scrapbox.Page, size int) [][]scrapbox.Page {
	if len(pages) == 0 {
		return nil
	}

	batches := make([][]scrapbox.Page, 0, (len(pages)+size-1)/size)

	for start := 0; start < len(pages); start += size {
		end := start + size
		if end > len(pages) {
			end = len(pages)
		}

		batches = append(batches, pages[start:end])
	}

	return batches
}

// pauseSleep waits for the given duration or until the context is canceled.
// It is the default sleepFunc for BatchImporter.
func pauseSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

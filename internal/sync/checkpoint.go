package sync

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultCheckpoint seeds the watermark the first time the pipeline runs
// with no checkpoint on record.
const DefaultCheckpoint int64 = 1745842021

// checkpointFilePerms restricts the checkpoint file to the owner.
const checkpointFilePerms = 0o600

// checkpointDirPerms for the state directory itself.
const checkpointDirPerms = 0o700

// CheckpointStore persists the watermark separating already-replicated from
// not-yet-replicated pages. Implementations must make Save durable before
// returning.
type CheckpointStore interface {
	// Load returns the current watermark. A missing or unreadable
	// checkpoint is not an error: implementations recover by seeding the
	// default value and persisting it before returning.
	Load() (int64, error)

	// Save durably persists a new watermark, overwriting the prior value.
	Save(value int64) error
}

// FileCheckpointStore keeps the watermark as a single integer in a text
// file, written atomically via a temp file and rename.
type FileCheckpointStore struct {
	path   string
	logger *slog.Logger
}

// NewFileCheckpointStore creates a store backed by the given file path.
func NewFileCheckpointStore(path string, logger *slog.Logger) *FileCheckpointStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &FileCheckpointStore{path: path, logger: logger}
}

// Load reads the watermark. An absent or unparsable file is treated as a
// first run: the default checkpoint is seeded and persisted immediately so
// a crash before the first Save still leaves a valid file behind.
func (s *FileCheckpointStore) Load() (int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, fmt.Errorf("reading checkpoint file %s: %w", s.path, err)
		}

		s.logger.Info("no checkpoint on record, seeding default",
			slog.String("path", s.path),
			slog.Int64("checkpoint", DefaultCheckpoint),
		)

		return s.seed()
	}

	value, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || value < 0 {
		s.logger.Warn("unparsable checkpoint file, seeding default",
			slog.String("path", s.path),
			slog.String("contents", strings.TrimSpace(string(data))),
		)

		return s.seed()
	}

	return value, nil
}

// Save writes the watermark atomically: temp file in the same directory,
// then rename over the old file.
func (s *FileCheckpointStore) Save(value int64) error {
	if err := os.MkdirAll(filepath.Dir(s.path), checkpointDirPerms); err != nil {
		return fmt.Errorf("creating checkpoint dir: %w", err)
	}

	tmpPath := s.path + ".tmp"

	data := []byte(strconv.FormatInt(value, 10) + "\n")
	if err := os.WriteFile(tmpPath, data, checkpointFilePerms); err != nil {
		return fmt.Errorf("writing checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("renaming checkpoint temp file: %w", err)
	}

	return nil
}

// Peek reads the watermark without seeding. Returns ok=false when no valid
// checkpoint exists. Used by status reporting, which must not mutate state.
func (s *FileCheckpointStore) Peek() (int64, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("reading checkpoint file %s: %w", s.path, err)
	}

	value, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || value < 0 {
		return 0, false, nil
	}

	return value, true, nil
}

// seed persists the default checkpoint and returns it. A failed seed write
// is fatal: proceeding without a durable watermark would make the run
// unrepeatable.
func (s *FileCheckpointStore) seed() (int64, error) {
	if err := s.Save(DefaultCheckpoint); err != nil {
		return 0, fmt.Errorf("seeding checkpoint: %w", err)
	}

	return DefaultCheckpoint, nil
}

package sync

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCheckpointStore creates a store in a temp dir.
func newTestCheckpointStore(t *testing.T) (*FileCheckpointStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "checkpoint")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return NewFileCheckpointStore(path, logger), path
}

func TestFileCheckpointStore_FirstRunSeedsDefault(t *testing.T) {
	t.Parallel()

	store, path := newTestCheckpointStore(t)

	value, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultCheckpoint, value)

	// The default must be persisted immediately, before any sync proceeds.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1745842021\n", string(data))
}

func TestFileCheckpointStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newTestCheckpointStore(t)

	require.NoError(t, store.Save(1745842022))

	value, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1745842022), value)

	// Overwrite advances the watermark.
	require.NoError(t, store.Save(1745900000))

	value, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1745900000), value)
}

func TestFileCheckpointStore_CorruptFileReseeds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{"garbage", "not-a-number\n"},
		{"negative", "-5\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, path := newTestCheckpointStore(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.contents), 0o600))

			value, err := store.Load()
			require.NoError(t, err)
			assert.Equal(t, DefaultCheckpoint, value)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "1745842021\n", string(data))
		})
	}
}

func TestFileCheckpointStore_SaveCreatesDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "state", "checkpoint")
	store := NewFileCheckpointStore(path, nil)

	require.NoError(t, store.Save(42))

	value, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), value)
}

func TestFileCheckpointStore_SaveLeavesNoTempFile(t *testing.T) {
	t.Parallel()

	store, path := newTestCheckpointStore(t)
	require.NoError(t, store.Save(7))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileCheckpointStore_Peek(t *testing.T) {
	t.Parallel()

	store, path := newTestCheckpointStore(t)

	// Absent file: not set, and crucially not seeded.
	value, ok, err := store.Peek()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, value)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "Peek must not create the checkpoint file")

	require.NoError(t, store.Save(99))

	value, ok, err = store.Peek()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(99), value)
}

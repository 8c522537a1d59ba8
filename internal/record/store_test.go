package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/portkeep/internal/model"
)

// TestStore_SaveAndLoad verifies the basic round trip: a saved port is
// read back unchanged.
func TestStore_SaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Save(3003))

	port, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 3003, port)
}

// TestStore_Overwrite verifies that saving replaces the previous value —
// the record holds exactly one port at a time.
func TestStore_Overwrite(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Save(3000))
	require.NoError(t, store.Save(4010))

	port, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 4010, port)
}

// TestStore_LoadMissing verifies that an absent record yields
// ErrRecordNotFound, not a generic I/O error.
func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load()
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}

// TestStore_LoadCorrupt verifies that non-numeric or out-of-range contents
// yield ErrRecordCorrupt.
func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "not a number", contents: "three thousand\n"},
		{name: "empty file", contents: ""},
		{name: "negative port", contents: "-5\n"},
		{name: "zero port", contents: "0\n"},
		{name: "above port range", contents: "70000\n"},
		{name: "trailing garbage", contents: "3000 extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, DefaultFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.contents), 0o644))

			store := NewStore(dir)
			_, err := store.Load()
			assert.ErrorIs(t, err, model.ErrRecordCorrupt)
		})
	}
}

// TestStore_LoadTrimsWhitespace verifies that surrounding whitespace does
// not corrupt an otherwise valid record (hand-edited files often gain a
// trailing newline or spaces).
func TestStore_LoadTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("  4010 \n\n"), 0o644))

	store := NewStore(dir)
	port, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 4010, port)
}

// TestStore_SaveRejectsInvalidPort verifies Save refuses values outside
// the TCP port range.
func TestStore_SaveRejectsInvalidPort(t *testing.T) {
	store := NewStore(t.TempDir())
	assert.Error(t, store.Save(0))
	assert.Error(t, store.Save(-1))
	assert.Error(t, store.Save(65536))
}

// TestStore_Delete verifies that delete removes the file and that deleting
// an absent record is not an error.
func TestStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Save(3000))
	require.NoError(t, store.Delete())

	_, err := store.Load()
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	// Second delete is a no-op.
	assert.NoError(t, store.Delete())
}

// TestStore_CustomPath verifies the record_file override path is honored.
func TestStore_CustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ports", "dev.port")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	store := NewStoreWithPath(path)
	require.NoError(t, store.Save(8080))

	port, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, port)
	assert.Equal(t, path, store.Path())
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/jsontree/internal/model"
)

func TestJSONStoreMissingFileReadsEmpty(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, store.FileExists())

	data, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONStoreWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	store := NewJSONStore(path)

	require.NoError(t, store.Write([]byte(`[{"title":"A"}]`)))
	assert.True(t, store.FileExists())

	data, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"A"}]`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestJSONStoreReadFailure(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(dir)

	_, err := store.Read()
	assert.ErrorIs(t, err, model.ErrIOFailure)
}

func TestJSONStoreBacksUpPreviousContent(t *testing.T) {
	dir := t.TempDir()
	bm, err := NewBackupManagerIn(filepath.Join(dir, "backups"))
	require.NoError(t, err)

	store := NewJSONStore(filepath.Join(dir, "doc.json"))
	store.Backups = bm
	store.SessionID = "abcd1234"

	require.NoError(t, store.Write([]byte("[1]")))
	backups, err := bm.FindBackupsForFile(store.FilePath)
	require.NoError(t, err)
	assert.Empty(t, backups, "nothing to back up on the first write")

	require.NoError(t, store.Write([]byte("[2]")))
	backups, err = bm.FindBackupsForFile(store.FilePath)
	require.NoError(t, err)
	require.Len(t, backups, 1)

	previous, err := os.ReadFile(backups[0].FilePath)
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(previous))
}

func TestWatcherSeesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	store := NewJSONStore(path)
	require.NoError(t, store.Write([]byte("[]")))

	w, err := NewWatcher(path, 0)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 8)
	go func() {
		_ = w.Run(ctx, func() { changed <- struct{}{} })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "unrelated.json"), []byte("[]"), 0o644))
	require.NoError(t, store.Write([]byte(`[{"title":"A"}]`)))

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("no change reported")
	}
}

func TestWatcherReportsLastWriteOfBurst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	store := NewJSONStore(path)
	require.NoError(t, store.Write([]byte("[]")))

	w, err := NewWatcher(path, 300*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := make(chan string, 8)
	go func() {
		_ = w.Run(ctx, func() {
			data, err := store.Read()
			if err == nil {
				seen <- string(data)
			}
		})
	}()

	require.NoError(t, store.Write([]byte(`[{"title":"first"}]`)))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, store.Write([]byte(`[{"title":"second"}]`)))

	select {
	case got := <-seen:
		assert.Equal(t, `[{"title":"second"}]`, got)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	select {
	case got := <-seen:
		t.Fatalf("burst reported twice, second report %q", got)
	case <-time.After(500 * time.Millisecond):
	}
}

package recents

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndReload(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Empty(t, store.List())

	now := time.Now().UTC().Truncate(time.Second)
	entries := []Entry{
		{CurrentPath: "docs/a.json", FullPath: "/p/docs/a.json", OpenedAt: now},
		{CurrentPath: "b.json", FullPath: "/p/b.json", OpenedAt: now},
		{CurrentPath: "docs/a.json", FullPath: "/p/docs/a.json", OpenedAt: now},
	}
	require.NoError(t, store.Save(entries))

	got := store.List()
	require.Len(t, got, 2, "duplicates are dropped")
	assert.Equal(t, "docs/a.json", got[0].CurrentPath)
	assert.Equal(t, "b.json", got[1].CurrentPath)

	reloaded, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded.List())
}

func TestStore_ListIsACopy(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save([]Entry{{CurrentPath: "a.json"}}))

	list := store.List()
	list[0].CurrentPath = "mutated"

	assert.Equal(t, "a.json", store.List()[0].CurrentPath)
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save([]Entry{{CurrentPath: "a.json"}}))
	require.NoError(t, store.Clear())

	data, err := os.ReadFile(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("{not json"), 0o600))

	_, err := NewStore(dir)
	assert.Error(t, err)
}

func TestStore_FailedFlushKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save([]Entry{{CurrentPath: "a.json"}}))

	// a directory in place of the temp file makes the write fail
	require.NoError(t, os.Mkdir(store.Path()+".tmp", 0o755))

	err = store.Save([]Entry{{CurrentPath: "b.json"}})
	require.Error(t, err)
	assert.Equal(t, "a.json", store.List()[0].CurrentPath)
}

package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, string) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Start(context.Background()))
	t.Cleanup(func() { _ = store.Stop(context.Background()) })
	return store, dir
}

func TestStore_SetGetDelete(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyFilePath, "/p/docs/a.json"))

	v, err := store.Get(ctx, KeyFilePath)
	require.NoError(t, err)
	assert.Equal(t, "/p/docs/a.json", v)

	require.NoError(t, store.Set(ctx, KeyFilePath, "/p/docs/b.json"))
	v, err = store.Get(ctx, KeyFilePath)
	require.NoError(t, err)
	assert.Equal(t, "/p/docs/b.json", v)

	require.NoError(t, store.Delete(ctx, KeyFilePath))
	_, err = store.Get(ctx, KeyFilePath)
	var notFound KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, KeyFilePath, notFound.Key)

	assert.NoError(t, store.Delete(ctx, KeyFilePath), "deleting a missing key is fine")
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewStore(dir)
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.Set(ctx, KeyProjectPath, "/p"))
	require.NoError(t, first.Set(ctx, KeyFilePath, "/p/a.json"))
	require.NoError(t, first.Stop(ctx))
	assert.False(t, first.Ready())

	second := NewStore(dir)
	require.NoError(t, second.Start(ctx))
	t.Cleanup(func() { _ = second.Stop(ctx) })

	all, err := second.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		KeyProjectPath: "/p",
		KeyFilePath:    "/p/a.json",
	}, all)
}

func TestStore_InvalidKey(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	var invalid InvalidKeyError
	assert.ErrorAs(t, store.Set(ctx, "", "x"), &invalid)
	_, err := store.Get(ctx, "")
	assert.ErrorAs(t, err, &invalid)
}

func TestStore_NotStarted(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	assert.False(t, store.Ready())
	assert.ErrorAs(t, store.Set(ctx, KeyFilePath, "x"), new(NotReadyError))
	_, err := store.Get(ctx, KeyFilePath)
	assert.ErrorAs(t, err, new(NotReadyError))
	assert.NoError(t, store.Stop(ctx))
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadesk/engine/internal/storage/state"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	storage, err := New(tmpDir)
	require.NoError(t, err)
	assert.NotNil(t, storage.State())
	assert.NotNil(t, storage.Recents())
	assert.Equal(t, filepath.Join(tmpDir, DirState), storage.Layout().State)
	assert.Nil(t, storage.Files())
	assert.False(t, storage.Ready())
}

func TestBuilder_InvalidConfig(t *testing.T) {
	_, err := NewBuilder().WithConfig(&Config{}).Build()
	require.Error(t, err)

	var invalid ConfigError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, "DataDir", invalid.Field)
}

func TestStorage_StartStop(t *testing.T) {
	storage, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, storage.Start(ctx))
	assert.True(t, storage.Ready())
	assert.True(t, storage.State().Ready())

	require.NoError(t, storage.Stop(ctx))
	assert.False(t, storage.Ready())
	assert.False(t, storage.State().Ready())

	// Stopping again should be safe
	assert.NoError(t, storage.Stop(ctx))
	assert.Error(t, storage.Start(ctx))
}

func TestStorage_OpenProject(t *testing.T) {
	ctx := context.Background()
	project := t.TempDir()

	storage, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, storage.Start(ctx))
	defer func() { _ = storage.Stop(ctx) }()

	_, err = storage.OpenProject(ctx, "")
	assert.ErrorIs(t, err, ErrNoProject)

	_, err = storage.OpenProject(ctx, filepath.Join(project, "missing"))
	assert.Error(t, err)

	require.NoError(t, storage.State().Set(ctx, state.KeyProjectPath, project))
	files, err := storage.OpenProject(ctx, "")
	require.NoError(t, err)
	assert.Same(t, files, storage.Files())

	require.NoError(t, files.WriteFile(ctx, "a.json", []byte("[]")))
	_, err = os.Stat(filepath.Join(project, "a.json"))
	assert.NoError(t, err)
}

func TestBuilder_BuildAndStart(t *testing.T) {
	ctx := context.Background()
	project := t.TempDir()
	dataDir := t.TempDir()

	_, err := NewBuilder().WithDataDir(dataDir).BuildAndStart(ctx)
	assert.ErrorIs(t, err, ErrNoProject)

	storage, err := NewBuilder().
		WithDataDir(dataDir).
		WithProjectRoot(project).
		BuildAndStart(ctx)
	require.NoError(t, err)
	defer func() { _ = storage.Stop(ctx) }()

	assert.True(t, storage.Ready())
	require.NotNil(t, storage.Files())
}

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_Prepare(t *testing.T) {
	layout := NewLayout(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, layout.Prepare())

	assert.DirExists(t, layout.Root)
	assert.DirExists(t, layout.State)
	assert.DirExists(t, layout.Recents)

	entries, err := os.ReadDir(layout.State)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe files are removed")
}

func TestLayout_FileInTheWay(t *testing.T) {
	base := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0o644))

	assert.Error(t, NewLayout(base).Prepare())
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o644))

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{name: "valid", cfg: Config{DataDir: dir}},
		{name: "valid with project", cfg: Config{DataDir: dir, ProjectRoot: dir}},
		{name: "missing data dir", cfg: Config{DataDir: "  "}, field: "DataDir"},
		{name: "missing project", cfg: Config{DataDir: dir, ProjectRoot: filepath.Join(dir, "nope")}, field: "ProjectRoot"},
		{name: "project is a file", cfg: Config{DataDir: dir, ProjectRoot: file}, field: "ProjectRoot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

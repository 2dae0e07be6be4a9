// Package test holds fixtures shared by package tests.
package test

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/schemafield"
)

// Project creates a temporary project folder. Keys are '/'-separated
// project-relative paths; a key ending in '/' creates an empty folder,
// any other key a file with the given content. The folder is removed after
// the test.
func Project(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()

	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rel := range keys {
		abs := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(rel, "/")))
		if strings.HasSuffix(rel, "/") {
			//nolint:gosec // Acceptable: test directory permissions
			require.NoError(t, os.MkdirAll(abs, 0755))
			continue
		}
		//nolint:gosec // Acceptable: test directory permissions
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(files[rel]), 0644))
	}
	return root
}

// WriteSchema writes the config file paired with the data file rel
func WriteSchema(t *testing.T, root, rel string, schema *schemafield.Field) {
	t.Helper()
	data, err := schemafield.Encode(schema)
	require.NoError(t, err)

	abs := filepath.Join(root, filepath.FromSlash(filetree.ConfigPath(rel)))
	//nolint:gosec // Acceptable: test directory permissions
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, data, 0644))
}

// WriteFile replaces the content of a project file
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	//nolint:gosec // Acceptable: test directory permissions
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
}

// ReadFile returns the content of a project file
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// AssertFileExists checks if a project file exists and fails the test if it doesn't.
func AssertFileExists(t *testing.T, root, rel string) {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err, "file should exist: %s", rel)
}

// AssertFileNotExists checks if a project file doesn't exist and fails the test if it does.
func AssertFileNotExists(t *testing.T, root, rel string) {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	require.Error(t, err, "file should not exist: %s", rel)
	require.True(t, os.IsNotExist(err), "expected file not to exist: %s", rel)
}

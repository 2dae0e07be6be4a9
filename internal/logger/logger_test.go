package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "logs", "schemadesk.log")

	err := Init(&Config{Level: "debug", Format: "json", Output: out})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Init(nil) })

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log := WithComponent("test")
	log.Info().Str("path", "docs/a.json").Msg("hello")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"path":"docs/a.json"`)
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init(&Config{Level: "chatty", Format: "text"}))
	t.Cleanup(func() { _ = Init(nil) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

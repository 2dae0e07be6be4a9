package test_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemadesk/engine/internal/schemafield"
	"github.com/schemadesk/engine/internal/test"
)

// TestExample demonstrates basic test utilities usage
func TestExample(t *testing.T) {
	root := test.Project(t, map[string]string{
		"docs/a.json": "[]",
		"empty/":      "",
	})
	assert.DirExists(t, filepath.Join(root, "empty"))
	test.AssertFileExists(t, root, "docs/a.json")
	assert.Equal(t, "[]", test.ReadFile(t, root, "docs/a.json"))

	test.WriteSchema(t, root, "docs/a.json", schemafield.DefaultSchema())
	test.AssertFileExists(t, root, "docs/a.config.json")
	test.AssertFileNotExists(t, root, "docs/b.json")
}

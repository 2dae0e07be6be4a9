package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "docs/a.json", "docs/a.json", false},
		{"dot segments", "./docs//a.json", "docs/a.json", false},
		{"backslashes", `docs\a.json`, "docs/a.json", false},
		{"untitled", "__untitled/x.json", "__untitled/x.json", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"drive letter", `C:\data\a.json`, "", true},
		{"parent", "../a.json", "", true},
		{"nested parent", "docs/../../a.json", "", true},
		{"only dot", ".", "", true},
		{"nul byte", "a\x00.json", "", true},
		{"too long", strings.Repeat("a", MaxPathLength+1), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFilePath("path", tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var verr ValidationError
				assert.ErrorAs(t, err, &verr)
				assert.Equal(t, "path", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateParentPath(t *testing.T) {
	got, err := ValidateParentPath("parentPath", "")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ValidateParentPath("parentPath", "docs/")
	require.NoError(t, err)
	assert.Equal(t, "docs", got)

	_, err = ValidateParentPath("parentPath", "../outside")
	assert.Error(t, err)
}

func TestValidationError_Message(t *testing.T) {
	err := ValidationError{Field: "path", Reason: "cannot be empty"}
	assert.Equal(t, "invalid path: cannot be empty", err.Error())
}

package filetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigPath(t *testing.T) {
	tests := []struct {
		data   string
		config string
	}{
		{"docs/a.json", "docs/a.config.json"},
		{"a.json", "a.config.json"},
		{"deep/er/v1.2.json", "deep/er/v1.2.config.json"},
		{"notes", "notes.config"},
		{"docs/notes", "docs/notes.config"},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.Equal(t, tt.config, ConfigPath(tt.data))
			assert.True(t, IsConfigPath(tt.config))
			assert.False(t, IsConfigPath(tt.data))
			assert.Equal(t, tt.data, DataPath(tt.config))
		})
	}

	assert.False(t, IsConfigPath(".config"))
	assert.False(t, IsConfigPath("dir/.config.json"))
	assert.Equal(t, "a.json", DataPath("a.json"))
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "a.json", JoinPath("", "a.json"))
	assert.Equal(t, "docs/a.json", JoinPath("docs/", "a.json"))

	assert.Equal(t, "__untitled/x.json", RelPath("", "x.json"))
	assert.Equal(t, "docs/x.json", RelPath("docs", "x.json"))
	assert.True(t, IsUntitled(RelPath("", "x.json")))
	assert.True(t, IsUntitled(Untitled))
	assert.False(t, IsUntitled("docs/x.json"))

	assert.Equal(t, "docs/sub", ParentPath("docs/sub/a.json"))
	assert.Equal(t, "", ParentPath("a.json"))
	assert.Equal(t, "a.json", Base("docs/sub/a.json"))
	assert.Equal(t, "a.json", Base("a.json"))

	assert.Equal(t, "/p/docs/a.json", FullPath("/p/", "docs/a.json"))
	assert.Equal(t, "/p", FullPath("/p", ""))

	rel, ok := RelFromFull("/p", "/p/docs/a.json")
	assert.True(t, ok)
	assert.Equal(t, "docs/a.json", rel)
	_, ok = RelFromFull("/p", "/other/docs/a.json")
	assert.False(t, ok)
	_, ok = RelFromFull("/p", "/pp/a.json")
	assert.False(t, ok)
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"/":              "",
		"docs/a.json":    "docs/a.json",
		"/docs/a.json/":  "docs/a.json",
		`docs\a.json`:    "docs/a.json",
		"../../etc/pass": "etc/pass",
		"docs/./x/../a":  "docs/a",
	}
	for in, want := range tests {
		assert.Equal(t, want, Clean(in), in)
	}
}

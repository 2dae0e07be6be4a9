package filetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "/projects/demo"

func sampleTree() *Node {
	return Build(base, []Entry{
		{Path: "docs", IsDir: true},
		{Path: "docs/a.json"},
		{Path: "docs/a.config.json"},
		{Path: "docs/guides", IsDir: true},
		{Path: "docs/guides/intro.json"},
		{Path: "docs/guides/intro.config.json"},
		{Path: "root.json"},
		{Path: "root.config.json"},
		{Path: "empty", IsDir: true},
	})
}

func TestFindFile_Scenario(t *testing.T) {
	root := NewFolder(base, "")
	docs := NewFolder(base, "docs")
	a := NewFile(base, "docs/a.json")
	docs.AppendChild(a)
	root.AppendChild(docs)

	found, ok := FindFile(root, "docs/a.json")
	require.True(t, ok)
	assert.Same(t, a, found)

	_, ok = FindFile(root, "docs/missing.json")
	assert.False(t, ok)
}

func TestFind(t *testing.T) {
	root := sampleTree()

	f, ok := FindFile(root, "docs/guides/intro.json")
	require.True(t, ok)
	assert.Equal(t, "intro.json", f.PartName)
	assert.Equal(t, base+"/docs/guides/intro.json", f.FullPath)

	_, ok = FindFile(root, "docs/guides")
	assert.False(t, ok, "folders are not files")

	folder, ok := FindFolder(root, "docs/guides")
	require.True(t, ok)
	assert.True(t, folder.IsFolder())

	top, ok := FindFolder(root, "")
	require.True(t, ok)
	assert.Same(t, root, top)

	_, ok = FindFolder(root, "docs/a.json")
	assert.False(t, ok)

	_, ok = FindFile(nil, "docs/a.json")
	assert.False(t, ok)
}

func TestBuild(t *testing.T) {
	root := sampleTree()

	names := func(n *Node) []string {
		out := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			out = append(out, c.PartName)
		}
		return out
	}

	assert.Equal(t, []string{"docs", "empty", "root.json"}, names(root))
	docs, _ := FindFolder(root, "docs")
	assert.Equal(t, []string{"guides", "a.json"}, names(docs))

	for _, f := range root.Files() {
		assert.False(t, IsConfigPath(f.CurrentPath), f.CurrentPath)
	}

	files, folders := root.Count()
	assert.Equal(t, 3, files)
	assert.Equal(t, 3, folders)
}

func TestBuild_ImplicitFoldersAndHidden(t *testing.T) {
	root := Build(base, []Entry{
		{Path: "a/b/c.json"},
		{Path: ".git", IsDir: true},
		{Path: ".git/HEAD"},
		{Path: "a/.tmp-123"},
	})

	f, ok := FindFile(root, "a/b/c.json")
	require.True(t, ok)
	assert.Equal(t, "c.json", f.PartName)

	_, ok = FindFolder(root, "a/b")
	assert.True(t, ok)
	_, ok = FindFolder(root, ".git")
	assert.False(t, ok)
	assert.Len(t, root.Files(), 1)
}

func TestRemove(t *testing.T) {
	root := sampleTree()

	assert.True(t, Remove(root, "docs/guides/intro.json"))
	_, ok := FindFile(root, "docs/guides/intro.json")
	assert.False(t, ok)

	assert.True(t, Remove(root, "root.json"))
	_, ok = FindFile(root, "root.json")
	assert.False(t, ok)

	assert.False(t, Remove(root, "root.json"))
}

func TestRelocate(t *testing.T) {
	n := NewFile(base, "docs/a.json")
	n.Relocate(base, "docs/guides/b.json")

	assert.Equal(t, "b.json", n.PartName)
	assert.Equal(t, "docs/guides/b.json", n.CurrentPath)
	assert.Equal(t, base+"/docs/guides/b.json", n.FullPath)
}

func TestClone(t *testing.T) {
	root := sampleTree()
	c := root.Clone()

	Remove(c, "docs/a.json")
	f, _ := FindFile(c, "root.json")
	f.PartName = "changed"

	_, ok := FindFile(root, "docs/a.json")
	assert.True(t, ok)
	orig, _ := FindFile(root, "root.json")
	assert.Equal(t, "root.json", orig.PartName)
}

package filetree

import (
	"sort"
	"strings"
)

// Kind distinguishes files from folders
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is one entry of the project tree. Children is only used by folders
// and keeps insertion order.
type Node struct {
	Kind        Kind    `json:"type"`
	FullPath    string  `json:"fullPath"`
	CurrentPath string  `json:"currentPath"`
	PartName    string  `json:"partName"`
	Children    []*Node `json:"children,omitempty"`
}

// Entry is one item of a storage listing, root-relative
type Entry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"isDir"`
}

// NewFile creates a file node for a root-relative path
func NewFile(base, rel string) *Node {
	return &Node{
		Kind:        KindFile,
		FullPath:    FullPath(base, rel),
		CurrentPath: rel,
		PartName:    Base(rel),
	}
}

// NewFolder creates an empty folder node. The root folder has rel "".
func NewFolder(base, rel string) *Node {
	return &Node{
		Kind:        KindFolder,
		FullPath:    FullPath(base, rel),
		CurrentPath: rel,
		PartName:    Base(rel),
		Children:    []*Node{},
	}
}

func (n *Node) IsFile() bool   { return n != nil && n.Kind == KindFile }
func (n *Node) IsFolder() bool { return n != nil && n.Kind == KindFolder }

// FindFile searches depth-first, in insertion order, for a file whose
// CurrentPath is p.
func FindFile(root *Node, p string) (*Node, bool) {
	return find(root, p, KindFile)
}

// FindFolder searches for a folder whose CurrentPath is p. The root folder
// matches "".
func FindFolder(root *Node, p string) (*Node, bool) {
	return find(root, p, KindFolder)
}

func find(n *Node, p string, kind Kind) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.Kind == kind && n.CurrentPath == p {
		return n, true
	}
	if n.Kind != KindFolder {
		return nil, false
	}
	for _, child := range n.Children {
		if found, ok := find(child, p, kind); ok {
			return found, true
		}
	}
	return nil, false
}

// AppendChild adds child at the end of a folder's children
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// RemoveChild removes the direct child with CurrentPath p
func (n *Node) RemoveChild(p string) bool {
	for i, child := range n.Children {
		if child.CurrentPath == p {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Remove detaches the node at p from its parent folder anywhere under root
func Remove(root *Node, p string) bool {
	if parent, ok := FindFolder(root, ParentPath(p)); ok && parent.RemoveChild(p) {
		return true
	}
	// fall back to a full search when the parent path does not resolve
	return removeDeep(root, p)
}

func removeDeep(n *Node, p string) bool {
	if !n.IsFolder() {
		return false
	}
	if n.RemoveChild(p) {
		return true
	}
	for _, child := range n.Children {
		if removeDeep(child, p) {
			return true
		}
	}
	return false
}

// Relocate points a node at a new root-relative path
func (n *Node) Relocate(base, rel string) {
	n.CurrentPath = rel
	n.PartName = Base(rel)
	n.FullPath = FullPath(base, rel)
}

// Clone returns a deep copy of the subtree
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Files flattens the subtree into its file nodes, depth-first
func (n *Node) Files() []*Node {
	var out []*Node
	n.walk(func(node *Node) {
		if node.IsFile() {
			out = append(out, node)
		}
	})
	return out
}

// Count returns the number of files and folders below n, n excluded
func (n *Node) Count() (files, folders int) {
	n.walk(func(node *Node) {
		if node == n {
			return
		}
		if node.IsFile() {
			files++
		} else {
			folders++
		}
	})
	return files, folders
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.walk(fn)
	}
}

// Build assembles the tree for base from a flat storage listing. Config files
// and dot-files are hidden; folders sort before files, then by name.
func Build(base string, entries []Entry) *Node {
	root := NewFolder(base, "")
	folders := map[string]*Node{"": root}

	var ensureFolder func(rel string) *Node
	ensureFolder = func(rel string) *Node {
		if f, ok := folders[rel]; ok {
			return f
		}
		f := NewFolder(base, rel)
		ensureFolder(ParentPath(rel)).AppendChild(f)
		folders[rel] = f
		return f
	}

	for _, e := range entries {
		rel := Clean(e.Path)
		if rel == "" || hidden(rel) {
			continue
		}
		if e.IsDir {
			ensureFolder(rel)
			continue
		}
		if IsConfigPath(rel) {
			continue
		}
		ensureFolder(ParentPath(rel)).AppendChild(NewFile(base, rel))
	}

	sortTree(root)
	return root
}

func hidden(rel string) bool {
	for _, seg := range strings.Split(rel, Separator) {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func sortTree(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Kind != b.Kind {
			return a.Kind == KindFolder
		}
		return a.PartName < b.PartName
	})
	for _, child := range n.Children {
		if child.IsFolder() {
			sortTree(child)
		}
	}
}

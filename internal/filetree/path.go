package filetree

import (
	"path"
	"strings"
)

// Separator joins path segments in every tree path
const Separator = "/"

// Untitled prefixes the CurrentPath of files created outside any folder.
// Such files exist only in the session until saved.
const Untitled = "__untitled"

const configMarker = ".config"

// JoinPath appends name to a root-relative parent path
func JoinPath(parent, name string) string {
	parent = strings.Trim(parent, Separator)
	if parent == "" {
		return name
	}
	return parent + Separator + name
}

// RelPath is the CurrentPath of a new file named name under parent.
// Without a parent the file is untitled.
func RelPath(parent, name string) string {
	if strings.Trim(parent, Separator) == "" {
		return Untitled + Separator + name
	}
	return JoinPath(parent, name)
}

// IsUntitled reports whether p names an unsaved file
func IsUntitled(p string) bool {
	return p == Untitled || strings.HasPrefix(p, Untitled+Separator)
}

// ParentPath returns everything before the last separator, or "" at top level
func ParentPath(p string) string {
	i := strings.LastIndex(p, Separator)
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Base returns the last segment of p
func Base(p string) string {
	return p[strings.LastIndex(p, Separator)+1:]
}

// FullPath composes the absolute path of a root-relative path
func FullPath(base, rel string) string {
	base = strings.TrimRight(base, Separator)
	if rel == "" {
		return base
	}
	return base + Separator + rel
}

// RelFromFull strips the project base from an absolute path
func RelFromFull(base, full string) (string, bool) {
	base = strings.TrimRight(base, Separator)
	prefix := base + Separator
	if !strings.HasPrefix(full, prefix) {
		return "", false
	}
	return full[len(prefix):], true
}

// Clean normalizes a user supplied relative path: forward slashes, no
// leading or trailing separator, no dot segments.
func Clean(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, Separator)
	p = path.Clean(Separator + p)
	return strings.TrimPrefix(p, Separator)
}

// ConfigPath maps a data file path to its companion config file:
// dir/name.ext becomes dir/name.config.ext.
func ConfigPath(p string) string {
	dir, file := splitLast(p)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	return dir + stem + configMarker + ext
}

// DataPath inverts ConfigPath. Paths that are not config paths are returned
// unchanged.
func DataPath(p string) string {
	if !IsConfigPath(p) {
		return p
	}
	dir, file := splitLast(p)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(strings.TrimSuffix(file, ext), configMarker)
	if ext == configMarker {
		// name.config with no extension
		return dir + strings.TrimSuffix(file, configMarker)
	}
	return dir + stem + ext
}

// IsConfigPath reports whether p names a companion config file
func IsConfigPath(p string) bool {
	_, file := splitLast(p)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	if ext == configMarker {
		return stem != ""
	}
	return strings.HasSuffix(stem, configMarker) && stem != configMarker
}

// splitLast returns the directory part including its trailing separator
func splitLast(p string) (string, string) {
	i := strings.LastIndex(p, Separator)
	return p[:i+1], p[i+1:]
}

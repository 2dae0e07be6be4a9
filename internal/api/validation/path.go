package validation

import (
	"strings"

	"github.com/schemadesk/engine/internal/filetree"
)

// MaxPathLength bounds request paths
const MaxPathLength = 1024

// ValidateFilePath checks a root-relative file path from a request and
// returns it cleaned. Absolute paths and parent segments are rejected.
func ValidateFilePath(field, p string) (string, error) {
	if err := ValidateNonEmpty(field, p); err != nil {
		return "", err
	}
	if err := checkPath(field, p); err != nil {
		return "", err
	}
	cleaned := filetree.Clean(p)
	if cleaned == "" {
		return "", ValidationError{Field: field, Reason: "does not name a file"}
	}
	return cleaned, nil
}

// ValidateParentPath checks an optional folder path. Empty is allowed and
// means no folder.
func ValidateParentPath(field, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", nil
	}
	if err := checkPath(field, p); err != nil {
		return "", err
	}
	return filetree.Clean(p), nil
}

func checkPath(field, p string) error {
	if len(p) > MaxPathLength {
		return ValidationError{Field: field, Reason: "path is too long"}
	}
	if strings.ContainsRune(p, 0) {
		return ValidationError{Field: field, Reason: "path contains a NUL byte"}
	}
	normalized := strings.ReplaceAll(p, `\`, filetree.Separator)
	if strings.HasPrefix(normalized, filetree.Separator) || (len(normalized) > 1 && normalized[1] == ':') {
		return ValidationError{Field: field, Reason: "path must be relative to the project root"}
	}
	for _, seg := range strings.Split(normalized, filetree.Separator) {
		if seg == ".." {
			return ValidationError{Field: field, Reason: "path must not leave the project root"}
		}
	}
	return nil
}

package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/logger"
)

var (
	// ErrNotFound matches fs.ErrNotExist under errors.Is
	ErrNotFound    = fmt.Errorf("not found: %w", fs.ErrNotExist)
	ErrOutsideRoot = errors.New("path outside project root")
	ErrConflict    = errors.New("path conflicts with an existing file or folder")
	ErrExists      = errors.New("already exists")
)

// Store reads and writes project files under a single root directory.
// Every path is root-relative with forward slashes.
type Store struct {
	root string
	log  zerolog.Logger
}

// NewStore creates a store rooted at dir, which must exist
func NewStore(dir string) (*Store, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	return &Store{
		root: root,
		log:  logger.WithComponent("files"),
	}, nil
}

// Root returns the absolute project root with forward slashes
func (s *Store) Root() string {
	return filepath.ToSlash(s.root)
}

// ReadFile returns the content of a file
func (s *Store) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := s.cleanAbs(rel)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether rel names an existing file or folder
func (s *Store) Exists(ctx context.Context, rel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	abs, err := s.cleanAbs(rel)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// WriteFile replaces a file atomically, creating parent folders as needed
func (s *Store) WriteFile(ctx context.Context, rel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := s.cleanAbs(rel)
	if err != nil {
		return err
	}
	if abs == s.root {
		return ErrConflict
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		return ErrConflict
	}

	dir := filepath.Dir(abs)
	if err := s.mkdirAllChecked(dir); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".schemadesk-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	s.log.Debug().Str("path", rel).Int("bytes", len(data)).Msg("File written")
	return nil
}

// DeleteFile removes a single file. Folders are refused.
func (s *Store) DeleteFile(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := s.cleanAbs(rel)
	if err != nil {
		return err
	}

	st, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if st.IsDir() {
		return ErrConflict
	}

	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}

	s.log.Debug().Str("path", rel).Msg("File deleted")
	return nil
}

// RenameFile moves a file within the root. The target must not exist.
func (s *Store) RenameFile(ctx context.Context, fromRel, toRel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fromAbs, err := s.cleanAbs(fromRel)
	if err != nil {
		return err
	}
	toAbs, err := s.cleanAbs(toRel)
	if err != nil {
		return err
	}

	if _, err := os.Stat(fromAbs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if _, err := os.Stat(toAbs); err == nil {
		return ErrExists
	}

	if err := s.mkdirAllChecked(filepath.Dir(toAbs)); err != nil {
		return err
	}

	if err := os.Rename(fromAbs, toAbs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}

	s.log.Debug().Str("from", fromRel).Str("to", toRel).Msg("File renamed")
	return nil
}

// ListTree returns every file and folder under rel ("" for the root),
// parents before children.
func (s *Store) ListTree(ctx context.Context, rel string) ([]filetree.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	absDir, err := s.cleanAbs(rel)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	baseRel := filetree.Clean(rel)

	var out []filetree.Entry
	err = filepath.WalkDir(absDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == absDir {
			return nil
		}

		local, err := filepath.Rel(absDir, p)
		if err != nil {
			return err
		}
		out = append(out, filetree.Entry{
			Path:  filetree.JoinPath(baseRel, filepath.ToSlash(local)),
			IsDir: d.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Store) cleanAbs(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")

	abs := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(rel)))

	prefix := s.root + string(filepath.Separator)
	if abs != s.root && !strings.HasPrefix(abs, prefix) {
		return "", ErrOutsideRoot
	}

	// symlinks must not escape the root, even for paths not created yet
	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", err
	}
	if resolved != s.root && !strings.HasPrefix(resolved, prefix) {
		return "", ErrOutsideRoot
	}

	return abs, nil
}

// resolveExisting evaluates symlinks on the deepest existing ancestor of abs
// and re-appends the missing tail
func resolveExisting(abs string) (string, error) {
	var tail []string
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// mkdirAllChecked creates absDir but refuses when any component is a file
func (s *Store) mkdirAllChecked(absDir string) error {
	absDir = filepath.Clean(absDir)
	if absDir != s.root && !strings.HasPrefix(absDir, s.root+string(filepath.Separator)) {
		return ErrOutsideRoot
	}

	rel, err := filepath.Rel(s.root, absDir)
	if err != nil {
		return err
	}
	if rel == "." {
		return nil
	}

	cur := s.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "" {
			continue
		}
		cur = filepath.Join(cur, part)

		st, err := os.Stat(cur)
		switch {
		case err == nil:
			if !st.IsDir() {
				return ErrConflict
			}
		case errors.Is(err, os.ErrNotExist):
			if err := os.Mkdir(cur, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

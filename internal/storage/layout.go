package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Subfolders of the data dir
const (
	DirState   = "state"
	DirRecents = "recents"
)

// Layout is the on-disk arrangement of the data dir
type Layout struct {
	Root    string
	State   string
	Recents string
}

// NewLayout computes the layout under dataDir without touching the disk
func NewLayout(dataDir string) Layout {
	root := filepath.Clean(dataDir)
	return Layout{
		Root:    root,
		State:   filepath.Join(root, DirState),
		Recents: filepath.Join(root, DirRecents),
	}
}

// Prepare creates every folder of the layout and probes that it accepts writes
func (l Layout) Prepare() error {
	for _, dir := range []string{l.Root, l.State, l.Recents} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		if err := probeWritable(dir); err != nil {
			return err
		}
	}
	return nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

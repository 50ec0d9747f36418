package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File stores one blob per key as a file in a data directory. This is the
// direct analog of browser local storage: best-effort local persistence,
// no durability guarantees beyond what the filesystem provides.
type File struct {
	dir string
}

// NewFile creates a file-backed blob store rooted at dir, creating the
// directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// Get returns the blob stored under key, or (nil, nil) when absent
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	blob, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return blob, nil
}

// Put stores value under key, replacing any previous blob. The write goes
// through a temp file and rename so a crash never leaves a half-written
// blob behind.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key. Deleting an absent key is a no-op.
func (f *File) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (f *File) path(key string) string {
	// keys are flat names like "sigcr_demo_db_v1"; keep them that way
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(f.dir, safe+".json")
}

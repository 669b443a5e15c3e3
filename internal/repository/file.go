package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores each collection as <dir>/<key>.json.
// Writes go to a temp file that is renamed over the target, so readers
// never observe a partially written document.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a FileBackend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Open creates the directory and an empty collection file if missing.
func (b *FileBackend) Open(_ context.Context, key string) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	_, err := os.Stat(b.path(key))
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat collection %s: %w", key, err)
	}
	return b.writeFile(key, emptyCollection)
}

// Read returns the collection file contents, or nil if it does not exist.
func (b *FileBackend) Read(_ context.Context, key string) ([]byte, error) {
	doc, err := os.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return doc, nil
}

// Write atomically replaces the collection file.
func (b *FileBackend) Write(_ context.Context, key string, doc []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return b.writeFile(key, doc)
}

func (b *FileBackend) writeFile(key string, doc []byte) error {
	tmp, err := os.CreateTemp(b.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync collection %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close collection %s: %w", key, err)
	}

	if err := os.Rename(tmpName, b.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace collection %s: %w", key, err)
	}
	return nil
}

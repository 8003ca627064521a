package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore saves images to disk under a base directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Save writes the image to a temporary file and renames it into place, so
// the final path never holds a partially written image.
func (f *FileStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	key = filepath.Base(key)
	target := filepath.Join(f.basePath, key)

	tmp, err := os.CreateTemp(f.basePath, "."+key+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize image: %w", err)
	}
	return filepath.ToSlash(target), nil
}

// BasePath returns the directory images are stored under.
func (f *FileStore) BasePath() string {
	return f.basePath
}

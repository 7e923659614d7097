package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/provscan/provscan/pkg/shared/files"
)

// LocalBackend stores artifacts in a directory on disk.
type LocalBackend struct {
	dir string
}

// NewLocal creates a backend rooted at dir.
func NewLocal(dir string) (*LocalBackend, error) {
	expanded, err := files.ExpandPath(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand storage dir %q: %w", dir, err)
	}
	if err := files.CreateFolderIfNotExists(expanded); err != nil {
		return nil, err
	}
	return &LocalBackend{dir: expanded}, nil
}

// Put implements Backend.
func (l *LocalBackend) Put(ctx context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(l.dir, key)
	if err := files.CreateFolderIfNotExists(filepath.Dir(path)); err != nil {
		return "", err
	}
	if err := files.WriteJsonFile(path, data); err != nil {
		return "", fmt.Errorf("failed to store artifact %q: %w", key, err)
	}
	return path, nil
}

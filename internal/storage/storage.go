package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store resolves stored file identifiers to readable content. The upload
// mechanics live outside this service; records in project_files carry a
// storage path relative to the store root.
type Store interface {
	Read(storagePath string) ([]byte, error)
	Size(storagePath string) (int64, error)
}

// Local is a directory-rooted store.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

func (l *Local) resolve(storagePath string) (string, error) {
	full := filepath.Join(l.root, filepath.Clean("/"+storagePath))
	if !strings.HasPrefix(full, l.root) {
		return "", fmt.Errorf("storage path escapes root: %s", storagePath)
	}
	return full, nil
}

func (l *Local) Read(storagePath string) ([]byte, error) {
	full, err := l.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (l *Local) Size(storagePath string) (int64, error) {
	full, err := l.resolve(storagePath)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

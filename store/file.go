package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores the document as a single JSON file on disk.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) (*FileBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Load() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save writes through a temp file and renames it into place so a crash
// mid-write never leaves a truncated document behind.
func (b *FileBackend) Save(data []byte) error {
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}

func (b *FileBackend) Close() error { return nil }

package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// File keeps the document as <dataDir>/safetasks-data.json.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(dataDir string) (*File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &File{path: filepath.Join(dataDir, Key+".json")}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Load(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Save writes a sibling temp file and renames it over the document so a
// crash never leaves a half-written state behind.
func (f *File) Save(_ context.Context, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), Key+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *File) Close() error { return nil }

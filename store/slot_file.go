package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileSlot stores the slot payload in a single file on disk. Writes go
// through a temp file + rename so a crash mid-write leaves either the old
// or the new payload, never a torn one.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

// NewFileSlot creates the parent directory if needed and returns a slot
// backed by the given file path.
func NewFileSlot(path string) (*FileSlot, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileSlot{path: path}, nil
}

// Read returns the file contents, or ErrSlotEmpty when the file does not
// exist.
func (f *FileSlot) Read(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the file contents atomically.
func (f *FileSlot) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Clear removes the file; a missing file counts as already cleared.
func (f *FileSlot) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

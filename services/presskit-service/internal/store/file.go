package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/locotek/presskit/internal/models"
)

// File keeps all submissions in a single JSON array. Every append reads
// the whole file and rewrites it. The mutex only guards against writers in
// the same process; one process should own the file.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a store for the JSON file at path. Nothing is touched until the first call.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the JSON file.
func (f *File) Path() string { return f.path }

// Append adds rec to the end of the array.
func (f *File) Append(ctx context.Context, rec models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	records, err := f.read()
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return writeAtomic(dir, f.path, data)
}

// List returns the array in file order. A missing file is an empty list.
func (f *File) List(ctx context.Context) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.read()
}

func (f *File) read() ([]models.Submission, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Submission{}, nil
	}

	var records []models.Submission
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return records, nil
}

// writeAtomic replaces path through a temp file in the same directory so a
// crash never leaves a truncated array behind.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".presskit-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

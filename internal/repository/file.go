package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

// FileStore keeps every key in one JSON object on disk, the way a browser
// keeps local storage. Writes replace the file atomically.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *logger.Logger
}

func NewFileStore(path string, logger *logger.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	logger.Infow("using file storage", "path", path)
	return &FileStore{path: path, logger: logger}, nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slots, err := f.read()
	if err != nil {
		return nil, err
	}
	value, ok := slots[key]
	if !ok {
		return nil, models.ErrSnapshotNotFound
	}
	return []byte(value), nil
}

func (f *FileStore) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slots, err := f.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every later save.
		f.logger.Warnw("discarding unreadable storage file", "path", f.path, "error", err)
		slots = map[string]string{}
	}
	slots[key] = string(value)

	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".mannapay-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	slots := map[string]string{}
	if len(data) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode storage file: %w", err)
	}
	return slots, nil
}

package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileStorage persists each document as <dir>/<key>.json. Writes go
// through a temp file plus rename so a crash never leaves a torn document,
// and an advisory lock on the directory keeps a second askviz process from
// interleaving writes.
type FileStorage struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewFileStorage creates file-backed storage rooted at dir, creating the
// directory if needed.
func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStorage{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, "state.lock")),
		logger: logger,
	}, nil
}

// Load implements Storage.
func (f *FileStorage) Load(key string, out any) (bool, error) {
	if err := f.lock.RLock(); err != nil {
		return false, fmt.Errorf("locking state directory: %w", err)
	}
	defer f.unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Save implements Storage.
func (f *FileStorage) Save(key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("locking state directory: %w", err)
	}
	defer f.unlock()

	tmp, err := os.CreateTemp(f.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// Delete implements Storage.
func (f *FileStorage) Delete(key string) error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("locking state directory: %w", err)
	}
	defer f.unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) unlock() {
	if err := f.lock.Unlock(); err != nil {
		f.logger.Warn("unlocking state directory", "error", err)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

const lockRetryDelay = 50 * time.Millisecond

// FileStorage keeps each entry in <directory>/<name>.json. Writers take an
// exclusive lock on a sibling .lock file and replace the entry atomically.
type FileStorage struct {
	directory string
}

func NewFileStorage(directory string) (*FileStorage, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", directory, err)
	}
	return &FileStorage{directory: directory}, nil
}

// Path returns the file an entry is stored in.
func (s *FileStorage) Path(name string) string {
	return filepath.Join(s.directory, unsafeNameChars.ReplaceAllString(name, "_")+".json")
}

func (s *FileStorage) Load(ctx context.Context, name string) ([]byte, error) {
	path := s.Path(name)
	lock := flock.New(path + ".lock")
	if _, err := lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	return data, nil
}

func (s *FileStorage) Save(ctx context.Context, name string, data []byte) error {
	path := s.Path(name)
	lock := flock.New(path + ".lock")
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(s.directory, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}

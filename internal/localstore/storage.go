// Package localstore is the device-local persistence used when no remote
// backend is configured: a small key-value store of JSON blobs on disk,
// holding the whole account table under one key and the current session
// under another. Mutations rewrite an entire value; there is no row-level
// update primitive and no cross-process locking, which is acceptable for a
// single-device, single-process client.
package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage stores one file per key inside a directory.
type Storage struct {
	dir string
}

// NewStorage returns a store rooted at dir. The directory is created on
// first write, not here, so a read-only probe never touches the disk.
func NewStorage(dir string) *Storage {
	return &Storage{dir: dir}
}

// Get reads the value stored under key. The second return is false when the
// key has never been written.
func (s *Storage) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return data, true, nil
}

// Set writes value under key, replacing any previous value.
func (s *Storage) Set(key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(s.path(key), value, 0o600); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Storage) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *Storage) path(key string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, key)
	return filepath.Join(s.dir, clean+".json")
}

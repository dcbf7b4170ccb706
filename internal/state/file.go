package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"watchroom/internal/library"
)

// FileStore persists the snapshot as a JSON file for deployments without
// redis. Saves go through a temp file and rename so a crash mid-write never
// corrupts the previous snapshot.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot file. A missing file is not an error; it just
// means a fresh library.
func (s *FileStore) Load(_ context.Context) (library.Snapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return library.Snapshot{}, false, nil
	}
	if err != nil {
		return library.Snapshot{}, false, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return library.Snapshot{}, false, nil
	}
	snap, err := Decode(data)
	if err != nil {
		return library.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *FileStore) Save(_ context.Context, snap library.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("mkdir state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write tmp state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename tmp state: %w", err)
	}
	return nil
}

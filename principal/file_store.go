package principal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the principal set as a single JSON document on disk.
// Writes go through a temp file and rename so a crash mid-save never leaves
// a torn document behind.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the record set. A missing file is not an error; it loads as an
// empty set.
func (s *FileStore) Load(_ context.Context) (Set, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(Set), nil
		}
		return nil, fmt.Errorf("read principal file: %w", err)
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode principal file: %w", err)
	}
	if set == nil {
		set = make(Set)
	}
	return set, nil
}

// Save writes the full replacement set.
func (s *FileStore) Save(_ context.Context, set Set) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode principal file: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".principals-*")
	if err != nil {
		return fmt.Errorf("write principal file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write principal file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write principal file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write principal file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write principal file: %w", err)
	}
	return nil
}

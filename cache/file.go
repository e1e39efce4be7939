package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"menuplanner/menu"
)

// FileStore persists snapshots as JSON documents in a directory, one file per
// (meal-time, date) key.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) Get(ctx context.Context, key Key) (menu.MenuSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, key.FileName()))
	if os.IsNotExist(err) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read menu snapshot: %w", err)
	}

	var snapshot menu.MenuSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode menu snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *FileStore) Put(ctx context.Context, key Key, snapshot menu.MenuSnapshot) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode menu snapshot: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.Dir, key.FileName()), data, 0o644); err != nil {
		return fmt.Errorf("write menu snapshot: %w", err)
	}
	return nil
}

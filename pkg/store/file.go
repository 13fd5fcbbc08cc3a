package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore is a file-based store for CLI usage.
// Entities are stored as indented JSON files at <baseDir>/<kind>/<name>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("store directory cannot be empty")
	}
	for _, k := range Kinds() {
		if err := os.MkdirAll(filepath.Join(baseDir, string(k)), 0700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(kind Kind, name string) string {
	return filepath.Join(s.baseDir, string(kind), name+".json")
}

func (s *FileStore) Put(ctx context.Context, kind Kind, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", kind, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file first so a crash never leaves half an entity.
	path := s.path(kind, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write %s/%s: %w", kind, name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s/%s: %w", kind, name, err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, kind Kind, name string, v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(kind, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
		}
		return fmt.Errorf("read %s/%s: %w", kind, name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s/%s: %w", kind, name, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, kind Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.baseDir, string(kind)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s dir: %w", kind, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Delete(ctx context.Context, kind Kind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(kind, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
		}
		return fmt.Errorf("remove %s/%s: %w", kind, name, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

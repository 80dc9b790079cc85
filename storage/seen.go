package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SeenStore remembers which video IDs have already been processed so a
// candidate is never handled twice across runs.
type SeenStore interface {
	Contains(ctx context.Context, videoID string) (bool, error)
	Add(ctx context.Context, videoID string) error
}

// FileSeenStore persists seen IDs as a JSON array on disk. The whole set
// is loaded at startup and rewritten on every Add, which is fine at the
// volumes a polling pipeline produces.
type FileSeenStore struct {
	mu   sync.Mutex
	path string
	ids  map[string]struct{}
}

// NewFileSeenStore loads the store from path, creating parent directories
// as needed. A missing file is an empty store, not an error.
func NewFileSeenStore(path string) (*FileSeenStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create seen store directory: %w", err)
	}

	s := &FileSeenStore{path: path, ids: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seen store: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse seen store %s: %w", path, err)
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s, nil
}

func (s *FileSeenStore) Contains(_ context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[videoID]
	return ok, nil
}

// Add records a video ID and flushes the store to disk. Adding an ID that
// is already present is a no-op.
func (s *FileSeenStore) Add(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[videoID]; ok {
		return nil
	}
	s.ids[videoID] = struct{}{}
	return s.flush()
}

// flush writes to a temp file and renames it into place so a crash mid-write
// never leaves a truncated store. Caller must hold the mutex.
func (s *FileSeenStore) flush() error {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode seen store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write seen store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace seen store: %w", err)
	}
	return nil
}

// Len reports the number of IDs in the store.
func (s *FileSeenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

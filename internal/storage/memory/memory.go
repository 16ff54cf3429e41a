// Package memory implements image storage backed by an in-memory map,
// intended for tests.
package memory

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kssweets/sweetshop/internal/storage"
)

// Storage implements storage.Storage using an in-memory map. It stores the
// file bytes so tests can assert on content.
type Storage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// New creates a new in-memory storage instance.
func New() *Storage {
	return &Storage{files: make(map[string][]byte)}
}

// Save stores the file bytes under a fresh uuid filename.
func (s *Storage) Save(_ context.Context, input *storage.SaveInput) (*storage.SaveResult, error) {
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, err
	}

	name := uuid.New().String() + strings.ToLower(input.Extension)
	publicPath := path.Join("/images", input.Folder, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[publicPath] = data

	return &storage.SaveResult{Path: publicPath}, nil
}

// Delete removes the stored file. A missing path is not an error.
func (s *Storage) Delete(_ context.Context, publicPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, publicPath)
	return nil
}

// Exists reports whether a file is present at the given public path.
func (s *Storage) Exists(_ context.Context, publicPath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[publicPath]
	return ok, nil
}

// Paths returns the public paths of all stored files; tests use it to assert
// on leftovers.
func (s *Storage) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	return paths
}

// Content returns the stored bytes for a path; tests use it to verify writes.
func (s *Storage) Content(publicPath string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[publicPath]
	return data, ok
}

// Package local implements image storage on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kssweets/sweetshop/internal/storage"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

// Storage implements storage.Storage on a directory of the local filesystem.
// Public paths have the form /images/<folder>/<uuid><ext> and map to files
// under the configured root directory.
type Storage struct {
	root string
}

// New creates a local storage rooted at dir.
func New(dir string) *Storage {
	return &Storage{root: dir}
}

// Save writes the file under a fresh uuid filename and returns its public path.
func (s *Storage) Save(_ context.Context, input *storage.SaveInput) (*storage.SaveResult, error) {
	name := uuid.New().String() + strings.ToLower(input.Extension)
	publicPath := path.Join("/images", input.Folder, name)

	dir := filepath.Join(s.root, "images", input.Folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.StorageFailure("save", fmt.Errorf("create directory: %w", err))
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, apperrors.StorageFailure("save", fmt.Errorf("create file: %w", err))
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Data); err != nil {
		os.Remove(f.Name())
		return nil, apperrors.StorageFailure("save", fmt.Errorf("write file: %w", err))
	}

	return &storage.SaveResult{Path: publicPath}, nil
}

// Delete removes the file behind a public path. A missing file is not an error.
func (s *Storage) Delete(_ context.Context, publicPath string) error {
	diskPath, err := s.diskPath(publicPath)
	if err != nil {
		return err
	}

	if err := os.Remove(diskPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.StorageFailure("delete", err)
	}

	return nil
}

// Exists reports whether a file is present at the given public path.
func (s *Storage) Exists(_ context.Context, publicPath string) (bool, error) {
	diskPath, err := s.diskPath(publicPath)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(diskPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, apperrors.StorageFailure("stat", err)
	}

	return true, nil
}

// diskPath maps a public path onto the storage root, rejecting paths that
// would escape it.
func (s *Storage) diskPath(publicPath string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimPrefix(publicPath, "/"))
	if !strings.HasPrefix(cleaned, "/images/") {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid storage path: %s", publicPath))
	}

	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

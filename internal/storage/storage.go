package storage

import (
	"context"
	"io"
)

// Storage defines the interface for image file storage operations. Paths
// returned and accepted are public URL paths such as
// /images/categories/3f2a....jpg.
type Storage interface {
	// Save stores a file under a generated unique name and returns its
	// public path.
	Save(ctx context.Context, input *SaveInput) (*SaveResult, error)

	// Delete removes a file by its public path. Deleting a path that does
	// not exist is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file is present at the given public path.
	Exists(ctx context.Context, path string) (bool, error)
}

// SaveInput holds the parameters for storing a file.
type SaveInput struct {
	// Folder groups files under /images/<folder>/.
	Folder string

	// Extension is the file extension including the dot, e.g. ".jpg".
	Extension string

	Size int64
	Data io.Reader
}

// SaveResult holds the outcome of a successful save.
type SaveResult struct {
	Path string
}

// Package blob defines the backup target contract: a flat namespace of
// immutable byte blobs with metadata tags.
package blob

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Download for unknown blob ids.
	ErrNotFound = errors.New("blob not found")

	// ErrChecksum is returned when downloaded bytes do not match the
	// checksum recorded at upload.
	ErrChecksum = errors.New("blob checksum mismatch")
)

// Info describes a stored blob.
type Info struct {
	ID           string
	Name         string
	Tags         map[string]string
	Size         int64
	ModifiedTime time.Time
}

// Store is a blob storage backend.
type Store interface {
	// Upload stores data under a new id and returns it.
	Upload(ctx context.Context, name string, tags map[string]string, data []byte) (string, error)

	// Download returns the bytes of blob id.
	Download(ctx context.Context, id string) ([]byte, error)

	// Delete removes blob id. Deleting a missing blob is not an error.
	Delete(ctx context.Context, id string) error

	// List returns blobs whose name starts with scope, newest first.
	List(ctx context.Context, scope string) ([]Info, error)
}

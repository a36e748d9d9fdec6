// Package blobstore defines path-keyed storage for image bytes. Path
// construction is the caller's responsibility; backends store whatever they
// are handed.
package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no blob exists at the given path.
var ErrNotFound = errors.New("blob not found")

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	ContentType string
	ETag        string
	Size        int64
}

type Store interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, *ObjectInfo, error)
	// Delete is idempotent: removing an absent path is not an error.
	Delete(ctx context.Context, path string) error
}

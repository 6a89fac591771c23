// Package storage abstracts file storage behind a Disk interface with
// local-filesystem and S3 implementations. Product images live here.
package storage

import (
	"context"
	"io"
)

// Disk is a named file store.
type Disk interface {
	// Put writes contents at path, creating parents as needed.
	Put(ctx context.Context, path string, contents []byte) error
	// PutStream writes from r at path.
	PutStream(ctx context.Context, path string, r io.Reader) error
	// Get reads the file at path in full.
	Get(ctx context.Context, path string) ([]byte, error)
	// GetStream opens the file at path for reading. Caller closes.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)
	// Exists reports whether path is present.
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error
	// URL returns a browser-resolvable URL for path.
	URL(path string) string
}

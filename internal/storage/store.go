package storage

import (
	"context"
	"io"
	"io/fs"
)

// Store defines the interface for a file storage backend. Paths are slash
// separated and relative to the store root.
type Store interface {
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Stat(ctx context.Context, path string) (fs.FileInfo, error)
}

package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/spf13/afero"
)

// AferoStore implements Store on any afero filesystem: the OS for STATIC_ROOT,
// an in-memory one in tests.
type AferoStore struct {
	fs afero.Fs
}

var _ Store = (*AferoStore)(nil)

// NewAferoStore creates a new AferoStore.
func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

// NewDirStore roots a store at dir on the local disk.
func NewDirStore(dir string) *AferoStore {
	return NewAferoStore(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// Save writes the content of the reader to path, creating parent directories
// and truncating any existing file.
func (s *AferoStore) Save(ctx context.Context, name string, reader io.Reader) (int64, error) {
	if err := s.fs.MkdirAll(path.Dir(name), 0755); err != nil {
		return 0, err
	}
	f, err := s.fs.Create(name)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Open opens a file for reading.
func (s *AferoStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.fs.OpenFile(name, os.O_RDONLY, 0)
}

func (s *AferoStore) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	return s.fs.Stat(name)
}

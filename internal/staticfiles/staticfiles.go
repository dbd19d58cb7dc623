// Package staticfiles gathers static assets from the configured source
// directories and the embedded application assets into STATIC_ROOT.
package staticfiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nfrund/quay/internal/storage"
	"github.com/nfrund/quay/web"
	"github.com/spf13/afero"
)

// Source is one tree of static files. Earlier sources win when two provide
// the same relative path.
type Source struct {
	Name string
	Fs   afero.Fs
}

// Stats reports what a collection run did.
type Stats struct {
	Copied     int
	Unmodified int
	// Paths lists the copied files, slash separated and sorted.
	Paths []string
}

// Collector copies source files into a storage backend.
type Collector struct {
	dest    storage.Store
	sources []Source
}

// NewCollector creates a collector writing into dest.
func NewCollector(dest storage.Store, sources ...Source) *Collector {
	return &Collector{dest: dest, sources: sources}
}

// DirSources returns one source per existing directory, followed by the
// embedded web assets. Missing directories are logged and skipped.
func DirSources(dirs []string) ([]Source, error) {
	osFs := afero.NewOsFs()
	var out []Source
	for _, dir := range dirs {
		info, err := osFs.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Static files directory does not exist, skipping", "dir", dir)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("static files source %q is not a directory", dir)
		}
		out = append(out, Source{Name: dir, Fs: afero.NewBasePathFs(osFs, dir)})
	}

	embedded, err := EmbeddedSource()
	if err != nil {
		return nil, err
	}
	return append(out, embedded), nil
}

// EmbeddedSource exposes the assets compiled into the binary.
func EmbeddedSource() (Source, error) {
	sub, err := fs.Sub(web.FS, "static")
	if err != nil {
		return Source{}, err
	}
	return Source{Name: "embedded", Fs: afero.FromIOFS{FS: sub}}, nil
}

// Collect copies every visible source file whose destination is missing or
// out of date.
func (c *Collector) Collect(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats
	seen := make(map[string]bool)

	for _, src := range c.sources {
		err := afero.Walk(src.Fs, ".", func(p string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if p != "." && strings.HasPrefix(info.Name(), ".") {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}

			rel, err := cleanPath(p)
			if err != nil {
				return err
			}
			if seen[rel] {
				return nil
			}
			seen[rel] = true

			fresh, err := c.unmodified(ctx, src.Fs, p, info, rel)
			if err != nil {
				return err
			}
			if fresh {
				stats.Unmodified++
				return nil
			}
			if err := c.copy(ctx, src.Fs, p, rel); err != nil {
				return fmt.Errorf("copying %s from %s: %w", rel, src.Name, err)
			}
			stats.Copied++
			stats.Paths = append(stats.Paths, rel)
			return nil
		})
		if err != nil {
			return stats, err
		}
	}

	sort.Strings(stats.Paths)
	slog.InfoContext(ctx, "Collected static files",
		"copied", stats.Copied,
		"unmodified", stats.Unmodified,
		"duration", time.Since(start),
	)
	return stats, nil
}

// unmodified reports whether dest already holds the file: same size and a
// modification time not older than the source. Sources without a
// modification time (embedded files) are compared by content instead.
func (c *Collector) unmodified(ctx context.Context, srcFs afero.Fs, p string, info fs.FileInfo, rel string) (bool, error) {
	existing, err := c.dest.Stat(ctx, rel)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if existing.IsDir() {
		return false, fmt.Errorf("destination %s is a directory", rel)
	}
	if existing.Size() != info.Size() {
		return false, nil
	}
	if !info.ModTime().IsZero() {
		return !existing.ModTime().Before(info.ModTime()), nil
	}

	want, err := afero.ReadFile(srcFs, p)
	if err != nil {
		return false, err
	}
	r, err := c.dest.Open(ctx, rel)
	if err != nil {
		return false, err
	}
	defer r.Close()
	have, err := io.ReadAll(r)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, have), nil
}

func (c *Collector) copy(ctx context.Context, srcFs afero.Fs, p, rel string) error {
	f, err := srcFs.OpenFile(p, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.dest.Save(ctx, rel, f)
	return err
}

func cleanPath(p string) (string, error) {
	rel := path.Clean(filepath.ToSlash(p))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("static file path %q escapes the destination", p)
	}
	return rel, nil
}

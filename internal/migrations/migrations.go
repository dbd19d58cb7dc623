// Package migrations embeds the schema migrations of every app, one tree per
// database dialect: <dialect>/<app>/<version>_<name>.up.sql (SQL) or
// <dialect>/<app>/<version>_<name>.surql (SurrealDB).
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sqlite postgres surreal
var files embed.FS

// Dialects with an embedded migration tree.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	Surreal  = "surreal"
)

// Apps lists the apps that own migrations, in the order they are applied.
var Apps = []string{"users"}

// Source is the migration directory of one app.
type Source struct {
	App string
	FS  fs.FS
}

// Sources returns the migration sources of every app for the given dialect.
func Sources(dialect string) ([]Source, error) {
	return SourcesFrom(files, dialect, Apps)
}

// SourcesFrom resolves <dialect>/<app> inside fsys for each app.
func SourcesFrom(fsys fs.FS, dialect string, apps []string) ([]Source, error) {
	out := make([]Source, 0, len(apps))
	for _, app := range apps {
		sub, err := fs.Sub(fsys, dialect+"/"+app)
		if err != nil {
			return nil, fmt.Errorf("migrations for app %q (%s): %w", app, dialect, err)
		}
		if _, err := fs.ReadDir(sub, "."); err != nil {
			return nil, fmt.Errorf("migrations for app %q (%s): %w", app, dialect, err)
		}
		out = append(out, Source{App: app, FS: sub})
	}
	return out, nil
}

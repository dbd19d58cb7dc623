package migrations

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSources_EveryDialectHasEveryApp(t *testing.T) {
	for _, dialect := range []string{SQLite, Postgres, Surreal} {
		sources, err := Sources(dialect)
		require.NoError(t, err, dialect)
		require.Len(t, sources, len(Apps))

		for i, src := range sources {
			assert.Equal(t, Apps[i], src.App)
			entries, err := fs.ReadDir(src.FS, ".")
			require.NoError(t, err)
			assert.NotEmpty(t, entries, "%s/%s has no migrations", dialect, src.App)
		}
	}
}

func TestSourcesFrom_MissingApp(t *testing.T) {
	fsys := fstest.MapFS{
		"sqlite/users/0001_initial.up.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := SourcesFrom(fsys, SQLite, []string{"users", "billing"})
	assert.ErrorContains(t, err, `"billing"`)
}

package surrealstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/migrations"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const historyTable = "migration_history"

type historyRecord struct {
	ID        *surrealmodels.RecordID      `json:"id,omitempty"`
	App       string                       `json:"app"`
	Name      string                       `json:"name"`
	Seq       int64                        `json:"seq"`
	AppliedAt surrealmodels.CustomDateTime `json:"applied_at"`
}

func (r *historyRecord) toDomain() domain.MigrationRecord {
	return domain.MigrationRecord{
		ID:        r.Seq,
		App:       r.App,
		Name:      r.Name,
		AppliedAt: r.AppliedAt.Time.UTC(),
	}
}

// Migrator applies .surql migration files. Each file runs in one transaction
// together with its migration_history row, whose record id is [app, name].
type Migrator struct {
	store   *Store
	sources []migrations.Source
}

var _ domain.MigrationRunner = (*Migrator)(nil)

// Migrator returns a runner for the given app sources, applied in order.
func (s *Store) Migrator(sources []migrations.Source) *Migrator {
	return &Migrator{store: s, sources: sources}
}

type migrationFile struct {
	version int
	name    string
	path    string
}

func (m *Migrator) Migrate(ctx context.Context) ([]domain.MigrationRecord, error) {
	latest, err := m.Latest(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	var seq int64
	if latest != nil {
		seq = latest.ID
	}

	var recorded []domain.MigrationRecord
	for _, src := range m.sources {
		files, err := listFiles(src.FS)
		if err != nil {
			return recorded, fmt.Errorf("migrating %s: %w", src.App, err)
		}

		for _, f := range files {
			done, err := m.isApplied(ctx, src.App, f.name)
			if err != nil {
				return recorded, err
			}
			if done {
				continue
			}

			seq++
			rec, err := m.apply(ctx, src, f, seq)
			if err != nil {
				return recorded, fmt.Errorf("migrating %s.%s: %w", src.App, f.name, err)
			}
			slog.InfoContext(ctx, "Applied migration", "app", rec.App, "name", rec.Name)
			recorded = append(recorded, rec)
		}
	}
	return recorded, nil
}

func (m *Migrator) Latest(ctx context.Context) (*domain.MigrationRecord, error) {
	rec, err := queryOne[historyRecord](ctx, m.store.db,
		`SELECT * FROM migration_history ORDER BY seq DESC LIMIT 1`, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	out := rec.toDomain()
	return &out, nil
}

func (m *Migrator) Applied(ctx context.Context) ([]domain.MigrationRecord, error) {
	rows, err := query[historyRecord](ctx, m.store.db,
		`SELECT * FROM migration_history ORDER BY seq ASC`, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list migration history: %w", err)
	}
	out := make([]domain.MigrationRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (m *Migrator) isApplied(ctx context.Context, app, name string) (bool, error) {
	rec, err := queryOne[historyRecord](ctx, m.store.db,
		`SELECT * FROM type::thing($tb, [$app, $name])`,
		map[string]any{"tb": historyTable, "app": app, "name": name})
	if err != nil {
		return false, fmt.Errorf("failed to read migration history: %w", err)
	}
	return rec != nil, nil
}

func (m *Migrator) apply(ctx context.Context, src migrations.Source, f migrationFile, seq int64) (domain.MigrationRecord, error) {
	body, err := fs.ReadFile(src.FS, f.path)
	if err != nil {
		return domain.MigrationRecord{}, err
	}

	now := time.Now().UTC()
	script := "BEGIN TRANSACTION;\n" +
		strings.TrimSpace(string(body)) + "\n" +
		"CREATE type::thing($tb, [$app, $name]) CONTENT $record;\n" +
		"COMMIT TRANSACTION;"

	err = execute(ctx, m.store.db, script, map[string]any{
		"tb":   historyTable,
		"app":  src.App,
		"name": f.name,
		"record": map[string]any{
			"app":        src.App,
			"name":       f.name,
			"seq":        seq,
			"applied_at": surrealmodels.CustomDateTime{Time: now},
		},
	})
	if err != nil {
		return domain.MigrationRecord{}, err
	}
	return domain.MigrationRecord{ID: seq, App: src.App, Name: f.name, AppliedAt: now}, nil
}

// listFiles returns the "<version>_<identifier>.surql" files of an app in
// version order, named "%04d_<identifier>" like the SQL backends.
func listFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".surql" {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".surql")
		prefix, identifier, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("malformed migration file name %q", e.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("malformed migration file name %q: %w", e.Name(), err)
		}
		files = append(files, migrationFile{
			version: version,
			name:    fmt.Sprintf("%04d_%s", version, identifier),
			path:    e.Name(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	for i := 1; i < len(files); i++ {
		if files[i].version == files[i-1].version {
			return nil, fmt.Errorf("duplicate migration version %d", files[i].version)
		}
	}
	return files, nil
}

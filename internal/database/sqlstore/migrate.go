package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/migrations"
)

const historyColumns = `id, app, name, applied_at`

var historyDDL = map[string]string{
	SQLite: `CREATE TABLE IF NOT EXISTS migration_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		app TEXT NOT NULL,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL,
		UNIQUE (app, name)
	)`,
	Postgres: `CREATE TABLE IF NOT EXISTS migration_history (
		id BIGSERIAL PRIMARY KEY,
		app TEXT NOT NULL,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL,
		UNIQUE (app, name)
	)`,
}

// Migrator runs each app's migrations with golang-migrate and keeps one
// migration_history row per applied migration across all apps.
type Migrator struct {
	store   *Store
	sources []migrations.Source
}

var _ domain.MigrationRunner = (*Migrator)(nil)

// Migrator returns a runner for the given app sources, applied in order.
func (s *Store) Migrator(sources []migrations.Source) *Migrator {
	return &Migrator{store: s, sources: sources}
}

// Migrate applies pending migrations app by app. golang-migrate keeps its own
// version table per app (schema_migrations_<app>); the history table is
// filled afterwards with every version up to the app's current one, so rows
// are only ever added for migrations that actually ran.
func (m *Migrator) Migrate(ctx context.Context) ([]domain.MigrationRecord, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}

	var recorded []domain.MigrationRecord
	for _, src := range m.sources {
		names, err := m.up(src)
		if err != nil {
			return recorded, fmt.Errorf("migrating %s: %w", src.App, err)
		}

		for _, name := range names {
			rec, inserted, err := m.record(ctx, src.App, name)
			if err != nil {
				return recorded, fmt.Errorf("recording %s.%s: %w", src.App, name, err)
			}
			if inserted {
				slog.InfoContext(ctx, "Applied migration", "app", rec.App, "name", rec.Name)
				recorded = append(recorded, *rec)
			}
		}
	}
	return recorded, nil
}

func (m *Migrator) Latest(ctx context.Context) (*domain.MigrationRecord, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}
	row := m.store.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM migration_history ORDER BY id DESC LIMIT 1`)
	return scanRecord(row)
}

func (m *Migrator) Applied(ctx context.Context) ([]domain.MigrationRecord, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}
	rows, err := m.store.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM migration_history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list migration history: %w", err)
	}
	defer rows.Close()

	var out []domain.MigrationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (m *Migrator) ensureHistory(ctx context.Context) error {
	if _, err := m.store.db.ExecContext(ctx, historyDDL[m.store.dialect]); err != nil {
		return fmt.Errorf("failed to create migration_history: %w", err)
	}
	return nil
}

// up runs golang-migrate for one app on a dedicated handle (the drivers close
// the *sql.DB they are given) and returns the names of every migration at or
// below the resulting version.
func (m *Migrator) up(src migrations.Source) ([]string, error) {
	db, err := sql.Open(m.store.dialect, m.store.dsn)
	if err != nil {
		return nil, err
	}

	driver, err := m.driver(db, "schema_migrations_"+src.App)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	files, err := iofs.New(src.FS, ".")
	if err != nil {
		_ = driver.Close()
		return nil, err
	}

	instance, err := migrate.NewWithInstance("iofs", files, m.store.dialect, driver)
	if err != nil {
		_ = files.Close()
		_ = driver.Close()
		return nil, err
	}
	defer instance.Close()

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, err
	}

	version, dirty, err := instance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("database is dirty at version %d", version)
	}

	listing, err := iofs.New(src.FS, ".")
	if err != nil {
		return nil, err
	}
	defer listing.Close()
	return migrationNames(listing, version)
}

func (m *Migrator) driver(db *sql.DB, table string) (database.Driver, error) {
	switch m.store.dialect {
	case Postgres:
		return postgres.WithInstance(db, &postgres.Config{MigrationsTable: table})
	default:
		return sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: table})
	}
}

// migrationNames walks the source from its first version up to and including
// upTo, naming each migration "<version>_<identifier>" with the version
// zero-padded to four digits.
func migrationNames(src source.Driver, upTo uint) ([]string, error) {
	var names []string

	version, err := src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for version <= upTo {
		body, identifier, err := src.ReadUp(version)
		if err != nil {
			return nil, err
		}
		_ = body.Close()
		names = append(names, fmt.Sprintf("%04d_%s", version, identifier))

		version, err = src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (m *Migrator) record(ctx context.Context, app, name string) (*domain.MigrationRecord, bool, error) {
	res, err := m.store.db.ExecContext(ctx, m.store.rebind(
		`INSERT INTO migration_history (app, name, applied_at) VALUES (?, ?, ?)
		ON CONFLICT (app, name) DO NOTHING`), app, name, time.Now().UTC())
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	row := m.store.db.QueryRowContext(ctx, m.store.rebind(
		`SELECT `+historyColumns+` FROM migration_history WHERE app = ? AND name = ?`), app, name)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, false, err
	}
	return rec, n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.MigrationRecord, error) {
	var rec domain.MigrationRecord
	if err := row.Scan(&rec.ID, &rec.App, &rec.Name, &rec.AppliedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &rec, nil
}

// Package database opens the configured persistence backend.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/quay/internal/config"
	"github.com/nfrund/quay/internal/database/sqlstore"
	"github.com/nfrund/quay/internal/database/surrealstore"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/migrations"
)

// Backend is what the rest of the application needs from a database.
type Backend interface {
	Users() domain.UserRepository
	Migrator() domain.MigrationRunner
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the backend selected by DB_DRIVER.
func Open(ctx context.Context, cfg config.Provider) (Backend, error) {
	switch cfg.GetDBDriver() {
	case config.DriverSQLite:
		return openSQL(ctx, sqlstore.SQLite, migrations.SQLite, cfg.GetDatabaseURL())
	case config.DriverPostgres:
		return openSQL(ctx, sqlstore.Postgres, migrations.Postgres, cfg.GetDatabaseURL())
	case config.DriverSurreal:
		sources, err := migrations.Sources(migrations.Surreal)
		if err != nil {
			return nil, err
		}
		store, err := surrealstore.Open(ctx, surrealstore.Options{
			URL:       cfg.GetDBURL(),
			User:      cfg.GetDBUser(),
			Pass:      cfg.GetDBPass(),
			Namespace: cfg.GetDBNs(),
			Database:  cfg.GetDBDb(),
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Connected to database", "driver", config.DriverSurreal)
		return &surrealBackend{store: store, sources: sources}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.GetDBDriver())
	}
}

func openSQL(ctx context.Context, dialect, tree, dsn string) (Backend, error) {
	sources, err := migrations.Sources(tree)
	if err != nil {
		return nil, err
	}
	store, err := sqlstore.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Connected to database", "driver", dialect)
	return &sqlBackend{store: store, sources: sources}, nil
}

type sqlBackend struct {
	store   *sqlstore.Store
	sources []migrations.Source
}

func (b *sqlBackend) Users() domain.UserRepository     { return b.store.Users() }
func (b *sqlBackend) Migrator() domain.MigrationRunner { return b.store.Migrator(b.sources) }
func (b *sqlBackend) Ping(ctx context.Context) error   { return b.store.Ping(ctx) }
func (b *sqlBackend) Close() error                     { return b.store.Close() }

type surrealBackend struct {
	store   *surrealstore.Store
	sources []migrations.Source
}

func (b *surrealBackend) Users() domain.UserRepository     { return b.store.Users() }
func (b *surrealBackend) Migrator() domain.MigrationRunner { return b.store.Migrator(b.sources) }
func (b *surrealBackend) Ping(ctx context.Context) error   { return b.store.Ping(ctx) }
func (b *surrealBackend) Close() error                     { return b.store.Close() }

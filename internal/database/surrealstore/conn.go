// Package surrealstore implements the user repository and the migration
// runner on SurrealDB.
package surrealstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/surrealdb/surrealdb.go"
)

// Options holds what is needed to open a SurrealDB connection.
type Options struct {
	URL       string
	User      string
	Pass      string
	Namespace string
	Database  string
}

// Store owns the SurrealDB connection shared by the repository and the migrator.
type Store struct {
	db   *surrealdb.DB
	opts Options
}

// Open connects, signs in as a root/namespace user and selects ns/db.
func Open(ctx context.Context, opts Options) (*Store, error) {
	slog.DebugContext(ctx, "Connecting to SurrealDB", "event", "db_connect_attempt", "db_url", redactURL(opts.URL))

	db, err := surrealdb.FromEndpointURLString(ctx, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database at %s: %w", redactURL(opts.URL), err)
	}

	if opts.User != "" {
		auth := &surrealdb.Auth{Username: opts.User, Password: opts.Pass}
		if _, err := db.SignIn(ctx, auth); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}

	if err := db.Use(ctx, opts.Namespace, opts.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	slog.DebugContext(ctx, "SurrealDB connection established", "event", "db_connect_success",
		"namespace", opts.Namespace,
		"database", opts.Database,
	)
	return &Store{db: db, opts: opts}, nil
}

// DB exposes the underlying connection, mainly for tests.
func (s *Store) DB() *surrealdb.DB { return s.db }

// Close closes the connection.
func (s *Store) Close() error { return s.db.Close(context.Background()) }

// Ping runs a trivial query to check the connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return execute(ctx, s.db, "RETURN 1", nil)
}

// Users returns the user repository.
func (s *Store) Users() *UserStore { return &UserStore{db: s.db} }

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}

package domain

import (
	"context"
	"time"
)

// MigrationRecord is one row of the migration history: a migration of an app
// that has been applied to the database.
type MigrationRecord struct {
	ID        int64
	App       string
	Name      string
	AppliedAt time.Time
}

// MigrationRunner applies schema migrations and reads back the history.
type MigrationRunner interface {
	// Migrate applies every pending migration and returns the history rows
	// recorded by this call, in application order. It is a no-op when
	// nothing is pending.
	Migrate(ctx context.Context) ([]MigrationRecord, error)

	// Latest returns the most recently recorded migration, or ErrNotFound
	// when the history is empty.
	Latest(ctx context.Context) (*MigrationRecord, error)

	// Applied returns the full history in application order.
	Applied(ctx context.Context) ([]MigrationRecord, error)
}

package testutils

import (
	"context"
	"testing"

	"github.com/nfrund/quay/internal/config"
	"github.com/nfrund/quay/internal/database"
	"github.com/stretchr/testify/require"
)

// OpenBackend opens the configured database without migrating it and closes
// it when the test ends.
func OpenBackend(t *testing.T, cfg config.Provider) database.Backend {
	t.Helper()

	backend, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

// NewBackend is OpenBackend with every migration applied.
func NewBackend(t *testing.T, cfg config.Provider) database.Backend {
	t.Helper()

	backend := OpenBackend(t, cfg)
	_, err := backend.Migrator().Migrate(context.Background())
	require.NoError(t, err)
	return backend
}

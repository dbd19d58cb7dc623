package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nfrund/quay/internal/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "quay",
			"POSTGRES_PASSWORD": "quay",
			"POSTGRES_DB":       "quay",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://quay:quay@%s:%s/quay?sslmode=disable", host, port.Port())
}

func TestPostgres_MigrateAndUsers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	store, err := Open(ctx, Postgres, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sources, err := migrations.Sources(migrations.Postgres)
	require.NoError(t, err)
	m := store.Migrator(sources)

	applied, err := m.Migrate(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)

	again, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	latest, err := m.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "users", latest.App)
	assert.Equal(t, "0002_user_last_login", latest.Name)

	exerciseUserStore(t, ctx, store.Users())
}

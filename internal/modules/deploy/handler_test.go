package deploy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/audit"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/pubsub"
	"github.com/nfrund/quay/internal/registry"
	"github.com/nfrund/quay/internal/staticfiles"
	"github.com/nfrund/quay/internal/storage"
	"github.com/nfrund/quay/internal/testutils"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookFixture struct {
	e          *echo.Echo
	migrations domain.MigrationRunner
	dest       afero.Fs
	events     *testutils.EventRecorder
}

// setupHooks boots the module against a fresh, unmigrated SQLite database and
// an in-memory STATIC_ROOT.
func setupHooks(t *testing.T) *hookFixture {
	t.Helper()

	cfg := testutils.ConfigForTests(t)
	backend := testutils.OpenBackend(t, cfg)

	src := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(src, "css/site.css", []byte("body{}"), 0644))
	dest := afero.NewMemMapFs()
	collector := staticfiles.NewCollector(storage.NewAferoStore(dest), staticfiles.Source{Name: "test", Fs: src})

	reg := registry.New(cfg)
	registry.Set(reg, registry.MigrationRunnerKey, backend.Migrator())
	registry.Set(reg, registry.StaticCollectorKey, collector)
	events := &testutils.EventRecorder{}
	registry.Set[pubsub.Publisher](reg, registry.EventPublisherKey, events)

	e := echo.New()
	require.NoError(t, New().Boot(context.Background(), e.Group(""), reg))
	return &hookFixture{e: e, migrations: backend.Migrator(), dest: dest, events: events}
}

func (f *hookFixture) call(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestMigrateHook(t *testing.T) {
	f := setupHooks(t)
	ctx := context.Background()

	t.Run("rejected calls have no side effects", func(t *testing.T) {
		for _, token := range []string{"", "wrong", "Bearer " + testutils.TestDeployToken} {
			rec := f.call(http.MethodPost, "/deploy/migrate/", token)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Empty(t, rec.Body.String())
		}
		history, err := f.migrations.Applied(ctx)
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Empty(t, f.events.Messages())
	})

	t.Run("applies pending migrations", func(t *testing.T) {
		rec := f.call(http.MethodPost, "/deploy/migrate/", testutils.TestDeployToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"app":"users","name":"0002_user_last_login"}`, rec.Body.String())

		history, err := f.migrations.Applied(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 2)

		msgs := f.events.Messages()
		require.Len(t, msgs, 1)
		payload, err := pubsub.Decode(audit.MigrationsAppliedEvent, msgs[0])
		require.NoError(t, err)
		assert.Equal(t, audit.MigrationsApplied{Applied: 2, App: "users", Name: "0002_user_last_login"}, payload)
	})

	t.Run("second call is a no-op with the same identity", func(t *testing.T) {
		rec := f.call(http.MethodPost, "/deploy/migrate/", testutils.TestDeployToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"app":"users","name":"0002_user_last_login"}`, rec.Body.String())

		history, err := f.migrations.Applied(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("GET is not routed", func(t *testing.T) {
		rec := f.call(http.MethodGet, "/deploy/migrate/", testutils.TestDeployToken)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestCollectStaticHook(t *testing.T) {
	f := setupHooks(t)

	rec := f.call(http.MethodPost, "/deploy/collectstatic/", "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	exists, err := afero.Exists(f.dest, "css/site.css")
	require.NoError(t, err)
	assert.False(t, exists, "nothing collected on a rejected call")

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := f.call(method, "/deploy/collectstatic/", testutils.TestDeployToken)
		assert.Equal(t, http.StatusOK, rec.Code, method)
		assert.Empty(t, rec.Body.String())
	}
	exists, err = afero.Exists(f.dest, "css/site.css")
	require.NoError(t, err)
	assert.True(t, exists)

	msgs := f.events.Messages()
	require.Len(t, msgs, 2)
	first, err := pubsub.Decode(audit.StaticCollectedEvent, msgs[0])
	require.NoError(t, err)
	assert.Equal(t, audit.StaticCollected{Copied: 1}, first)
	second, err := pubsub.Decode(audit.StaticCollectedEvent, msgs[1])
	require.NoError(t, err)
	assert.Equal(t, audit.StaticCollected{Unmodified: 1}, second)
}

// stubRunner lets a test script the migration runner.
type stubRunner struct {
	migrateErr error
	latest     *domain.MigrationRecord
	latestErr  error
	ctxErr     error
}

func (s *stubRunner) Migrate(ctx context.Context) ([]domain.MigrationRecord, error) {
	s.ctxErr = ctx.Err()
	return nil, s.migrateErr
}

func (s *stubRunner) Latest(ctx context.Context) (*domain.MigrationRecord, error) {
	return s.latest, s.latestErr
}

func (s *stubRunner) Applied(ctx context.Context) ([]domain.MigrationRecord, error) {
	return nil, nil
}

func TestMigrate_Failures(t *testing.T) {
	run := func(runner *stubRunner, ctx context.Context) error {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx)
		c := e.NewContext(req, httptest.NewRecorder())
		return NewHandler(runner, nil, &testutils.EventRecorder{}).Migrate(c)
	}

	t.Run("runner error propagates", func(t *testing.T) {
		boom := errors.New("syntax error at line 3")
		err := run(&stubRunner{migrateErr: boom}, context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty history is an internal error, not a 404", func(t *testing.T) {
		err := run(&stubRunner{latestErr: domain.ErrNotFound}, context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("client cancellation does not reach the runner", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		runner := &stubRunner{latest: &domain.MigrationRecord{App: "users", Name: "0001_initial"}}
		require.NoError(t, run(runner, ctx))
		assert.NoError(t, runner.ctxErr)
	})
}

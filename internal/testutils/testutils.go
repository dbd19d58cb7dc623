// Package testutils holds helpers shared by the integration tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/nfrund/quay/internal/config"
	"github.com/stretchr/testify/require"
)

// TestDeployToken is the deployment secret ConfigForTests installs.
const TestDeployToken = "test-deploy-token"

// ConfigForTests returns a config for a throwaway environment: a SQLite file
// and a STATIC_ROOT inside t.TempDir(). Values from a .env.test file at the
// project root, when present, are applied first; the isolated paths always win.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	if root, ok := projectRoot(); ok {
		if env, err := godotenv.Read(filepath.Join(root, ".env.test")); err == nil {
			for key, value := range env {
				t.Setenv(key, value)
			}
		}
	}

	dir := t.TempDir()
	t.Setenv("SESSION_SECRET", "a-very-secret-key-for-testing-!")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DATABASE_URL", filepath.Join(dir, "quay.db"))
	t.Setenv("STATIC_ROOT", filepath.Join(dir, "staticfiles"))
	t.Setenv("STATICFILES_DIRS", filepath.Join(dir, "static"))
	t.Setenv("SINGLE_CD_AUTHORIZATION_TOKEN", TestDeployToken)
	t.Setenv("LOGIN_RATE_LIMIT", "1000")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}

// projectRoot walks up from the working directory to the directory with go.mod.
func projectRoot() (string, bool) {
	path, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, true
		}
		if path == filepath.Dir(path) {
			return "", false
		}
		path = filepath.Dir(path)
	}
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverSurreal  = "surrealdb"
)

// Provider is the read-only view of the configuration handed to the rest of
// the application. Handlers call the getters per request, so tests can swap
// in a stub that embeds Provider and overrides what they need.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetSessionSecure() bool

	GetDBDriver() string
	GetDatabaseURL() string
	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string

	GetDeployToken() string
	GetDeployMigratePath() string
	GetDeployCollectStaticPath() string

	GetStaticURL() string
	GetStaticRoot() string
	GetStaticDirs() []string

	GetLoginURL() string
	GetLoginRateLimit() int
	GetShutdownTimeout() time.Duration
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr       string
	AppBaseURL    string
	SessionSecret string
	SessionSecure bool

	DBDriver    string
	DatabaseURL string

	// SurrealDB connection, used when DBDriver is "surrealdb".
	DBUrl  string
	DBNs   string
	DBDb   string
	DBUser string
	DBPass string

	DeployToken             string
	DeployMigratePath       string
	DeployCollectStaticPath string

	StaticURL  string
	StaticRoot string
	StaticDirs []string

	LoginURL        string
	LoginRateLimit  int
	ShutdownTimeout time.Duration
}

// New loads configuration from a .env file, if present, and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppAddr:       getEnv("APP_ADDR", ":8080"),
		AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:8080"),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL: getEnv("DATABASE_URL", "quay.db"),

		DBUrl:  os.Getenv("SURREAL_URL"),
		DBUser: os.Getenv("SURREAL_USER"),
		DBPass: os.Getenv("SURREAL_PASS"),
		DBNs:   os.Getenv("SURREAL_NS"),
		DBDb:   os.Getenv("SURREAL_DB"),

		DeployToken:             os.Getenv("SINGLE_CD_AUTHORIZATION_TOKEN"),
		DeployMigratePath:       slashed(getEnv("DEPLOY_MIGRATE_PATH", "/deploy/migrate/")),
		DeployCollectStaticPath: slashed(getEnv("DEPLOY_COLLECTSTATIC_PATH", "/deploy/collectstatic/")),

		StaticURL:  slashed(getEnv("STATIC_URL", "/static/")),
		StaticRoot: getEnv("STATIC_ROOT", "staticfiles"),
		StaticDirs: splitList(getEnv("STATICFILES_DIRS", "web/static")),

		LoginURL: slashed(getEnv("LOGIN_URL", "/accounts/login/")),
	}

	var err error
	if cfg.SessionSecure, err = getBool("SESSION_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit, err = getInt("LOGIN_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case DriverSurreal:
		if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
			return errors.New("SURREAL_URL, SURREAL_NS and SURREAL_DB are required for the surrealdb driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DeployMigratePath == c.DeployCollectStaticPath {
		return errors.New("DEPLOY_MIGRATE_PATH and DEPLOY_COLLECTSTATIC_PATH must differ")
	}
	return nil
}

func (c *Config) GetAppAddr() string                 { return c.AppAddr }
func (c *Config) GetAppBaseURL() string              { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string           { return c.SessionSecret }
func (c *Config) GetSessionSecure() bool             { return c.SessionSecure }
func (c *Config) GetDBDriver() string                { return c.DBDriver }
func (c *Config) GetDatabaseURL() string             { return c.DatabaseURL }
func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDeployToken() string             { return c.DeployToken }
func (c *Config) GetDeployMigratePath() string       { return c.DeployMigratePath }
func (c *Config) GetDeployCollectStaticPath() string { return c.DeployCollectStaticPath }
func (c *Config) GetStaticURL() string               { return c.StaticURL }
func (c *Config) GetStaticRoot() string              { return c.StaticRoot }
func (c *Config) GetStaticDirs() []string            { return c.StaticDirs }
func (c *Config) GetLoginURL() string                { return c.LoginURL }
func (c *Config) GetLoginRateLimit() int             { return c.LoginRateLimit }
func (c *Config) GetShutdownTimeout() time.Duration  { return c.ShutdownTimeout }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

// slashed makes sure a route prefix starts and ends with "/".
func slashed(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

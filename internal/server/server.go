package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/app"
	"github.com/nfrund/quay/internal/audit"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/config"
	"github.com/nfrund/quay/internal/database"
	"github.com/nfrund/quay/internal/handlers"
	"github.com/nfrund/quay/internal/module"
	"github.com/nfrund/quay/internal/pubsub"
	"github.com/nfrund/quay/internal/registry"
	"github.com/nfrund/quay/internal/rendering"
	"github.com/nfrund/quay/internal/staticfiles"
	"github.com/nfrund/quay/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	Backend  database.Backend
	Registry *registry.Registry

	bus     *pubsub.WatermillBridge
	modules []module.Module
}

// New creates a new Server instance on top of an open database backend.
// Routes are not registered until RegisterRoutes is called.
func New(cfg config.Provider, backend database.Backend) (*Server, error) {
	sources, err := staticfiles.DirSources(cfg.GetStaticDirs())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static sources: %w", err)
	}
	collector := staticfiles.NewCollector(storage.NewDirStore(cfg.GetStaticRoot()), sources...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = rendering.NewUniversalRenderer()
	e.Validator = handlers.NewValidator()

	setupErrorHandling(e)
	setupMiddleware(e, cfg, auth.NewCookieStore(cfg.GetSessionSecret(), cfg.GetSessionSecure()))

	bus := pubsub.NewWatermillBridge()
	if err := audit.Subscribe(context.Background(), bus, slog.Default()); err != nil {
		_ = bus.Close()
		return nil, err
	}

	reg := registry.New(cfg)
	app.Dependencies{
		Users:     backend.Users(),
		Migrator:  backend.Migrator(),
		Collector: collector,
		Renderer:  rendering.NewUniversalRenderer(),
		Events:    bus,
	}.Provide(reg)

	return &Server{
		E:        e,
		Cfg:      cfg,
		Backend:  backend,
		Registry: reg,
		bus:      bus,
		modules:  app.NewModules(),
	}, nil
}

// RegisterRoutes mounts the static files, the health probes and every module.
// Modules register their services first, then boot in order.
func (s *Server) RegisterRoutes(ctx context.Context) error {
	s.E.Static(strings.TrimSuffix(s.Cfg.GetStaticURL(), "/"), s.Cfg.GetStaticRoot())

	health := handlers.NewHealthHandler(s.Backend)
	s.E.GET(healthzPath, health.Healthz)
	s.E.GET(readyzPath, health.Readyz)

	for _, m := range s.modules {
		if err := m.Register(s.Registry); err != nil {
			return fmt.Errorf("failed to register module %s: %w", m.Name(), err)
		}
	}

	root := s.E.Group("")
	for _, m := range s.modules {
		if err := m.Boot(ctx, root, s.Registry); err != nil {
			return fmt.Errorf("failed to boot module %s: %w", m.Name(), err)
		}
		slog.DebugContext(ctx, "Module booted", "module", m.Name())
	}
	return nil
}

package users

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/module"
	"github.com/nfrund/quay/internal/registry"
)

// UsersModule serves the profile pages under /users.
type UsersModule struct {
	module.BaseModule
}

// New creates a new instance of the UsersModule.
func New() *UsersModule {
	return &UsersModule{}
}

// Name returns the unique name for the module.
func (m *UsersModule) Name() string {
	return "users"
}

// Boot registers the profile routes. Every route requires a logged-in user.
func (m *UsersModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	cfg := reg.Config()
	repo := registry.MustGet(reg, registry.UserRepositoryKey)
	h := NewHandler(repo, cfg.GetStaticURL(), registry.MustGet(reg, registry.EventPublisherKey))

	slog.InfoContext(ctx, "Booting UsersModule: Setting up routes...")

	users := g.Group("/users", middleware.RequireLogin(repo, cfg.GetLoginURL()))
	users.GET("/~redirect/", h.Redirect)
	users.GET("/~update/", h.UpdateGet)
	users.POST("/~update/", h.UpdatePost)
	users.GET("/:id/", h.Detail)
	return nil
}

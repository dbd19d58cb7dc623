package accounts

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/module"
	"github.com/nfrund/quay/internal/registry"
	"github.com/nfrund/quay/internal/view"
)

// AccountsModule serves login and logout.
type AccountsModule struct {
	module.BaseModule
}

// New creates a new instance of the AccountsModule.
func New() *AccountsModule {
	return &AccountsModule{}
}

// Name returns the unique name for the module.
func (m *AccountsModule) Name() string {
	return "accounts"
}

// Boot registers the login form at LOGIN_URL and the logout action.
func (m *AccountsModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	cfg := reg.Config()
	repo := registry.MustGet(reg, registry.UserRepositoryKey)
	h := NewHandler(repo, cfg.GetLoginURL(), cfg.GetStaticURL(), registry.MustGet(reg, registry.EventPublisherKey))

	slog.InfoContext(ctx, "Booting AccountsModule: Setting up routes...", "login_url", cfg.GetLoginURL())

	g.GET(cfg.GetLoginURL(), h.LoginGet)
	g.POST(cfg.GetLoginURL(), h.LoginPost, middleware.RateLimiter(cfg.GetLoginRateLimit()))
	g.POST(view.LogoutURL, h.Logout)
	return nil
}

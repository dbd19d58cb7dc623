package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/quay/internal/config"
	appmiddleware "github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/view/layouts"
)

func setupMiddleware(e *echo.Echo, cfg config.Provider, store sessions.Store) {
	staticURL := cfg.GetStaticURL()

	e.Pre(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	// Paths without a trailing slash are rewritten in place to the slashed form.
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, staticURL)
		},
	}))

	e.Use(middleware.Recover())
	e.Use(appmiddleware.Logger)
	e.Use(appmiddleware.AccessLog())
	e.Use(session.Middleware(store))
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:_csrf,header:X-CSRF-Token",
		ContextKey:     layouts.CSRFContextKey,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.GetSessionSecure(),
		CookieSameSite: http.SameSiteLaxMode,
		Skipper:        csrfExempt(staticURL, cfg.GetDeployMigratePath(), cfg.GetDeployCollectStaticPath()),
	}))
}

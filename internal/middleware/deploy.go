package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// TokenSource yields the shared deployment secret. It is called on every
// request; a rotated secret takes effect once the process reloads its
// configuration.
type TokenSource func() string

// DeployToken rejects requests whose Authorization header is not exactly the
// shared secret with an empty 403. An empty secret rejects everything.
func DeployToken(token TokenSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			want := token()
			got := c.Request().Header.Get(echo.HeaderAuthorization)

			if want == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				FromContext(c.Request().Context()).Warn("Rejected deployment hook call",
					"path", c.Path(),
					"remote_ip", c.RealIP(),
					"header_present", got != "",
				)
				return c.NoContent(http.StatusForbidden)
			}
			return next(c)
		}
	}
}

package server

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	healthzPath = "/healthz/"
	readyzPath  = "/readyz/"
)

// csrfExempt reports whether a request skips CSRF validation: the token
// protected deploy hooks, the static tree and the health probes.
func csrfExempt(staticURL string, hookPaths ...string) func(c echo.Context) bool {
	return func(c echo.Context) bool {
		p := c.Request().URL.Path
		if strings.HasPrefix(p, staticURL) || p == healthzPath || p == readyzPath {
			return true
		}
		for _, hook := range hookPaths {
			if p == hook {
				return true
			}
		}
		return false
	}
}

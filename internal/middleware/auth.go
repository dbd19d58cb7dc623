package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/domain"
)

// RequireLogin protects routes that need a logged-in user. Requests without a
// session, or whose session points at a user that no longer exists, are
// redirected to loginURL with the original URI in "next".
func RequireLogin(users domain.UserRepository, loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			id, err := auth.SessionUserID(c)
			if err != nil {
				return redirectToLogin(c, loginURL)
			}

			user, err := users.FindByID(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				FromContext(ctx).Info("Session refers to a missing user", "user_id", id)
				_ = auth.Logout(c)
				return redirectToLogin(c, loginURL)
			}
			if err != nil {
				return err
			}

			c.Set(auth.UserContextKey, user)
			c.SetRequest(c.Request().WithContext(WithLogger(ctx, FromContext(ctx).With("user_id", user.ID))))
			return next(c)
		}
	}
}

// LoginRedirectURL is loginURL with next set to the escaped request URI.
func LoginRedirectURL(loginURL, requestURI string) string {
	return loginURL + "?" + url.Values{"next": {requestURI}}.Encode()
}

func redirectToLogin(c echo.Context, loginURL string) error {
	return c.Redirect(http.StatusFound, LoginRedirectURL(loginURL, c.Request().RequestURI))
}

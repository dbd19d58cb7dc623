// Package auth holds the session and password primitives behind login.
package auth

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/domain"
)

const (
	// SessionName is the cookie name of the login session.
	SessionName = "quay-session"

	sessionUserKey = "user_id"
	sessionMaxAge  = 14 * 24 * 60 * 60

	// UserContextKey is the echo context key under which RequireLogin stores
	// the authenticated *domain.User.
	UserContextKey = "user"
)

// ErrNoSession is returned when the request carries no logged-in user.
var ErrNoSession = errors.New("no authenticated session")

// NewCookieStore builds the session store shared by login sessions and flash messages.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Login records the user id in the session cookie.
func Login(c echo.Context, user *domain.User) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserKey] = user.ID
	return sess.Save(c.Request(), c.Response())
}

// Logout expires the session cookie.
func Logout(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// SessionUserID returns the user id stored by Login.
func SessionUserID(c echo.Context) (string, error) {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return "", ErrNoSession
	}
	id, ok := sess.Values[sessionUserKey].(string)
	if !ok || id == "" {
		return "", ErrNoSession
	}
	return id, nil
}

// CurrentUser returns the user placed in the context by RequireLogin.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

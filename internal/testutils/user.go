package testutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/domain"
	"github.com/stretchr/testify/require"
)

// TestUser is a created user together with its plaintext password.
type TestUser struct {
	*domain.User
	Password string
}

// CreateUser stores a user whose password is "<username>-password".
func CreateUser(t *testing.T, users domain.UserRepository, username, name string) TestUser {
	t.Helper()

	password := username + "-password"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	u := &domain.User{Username: username, Name: name, PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), u))
	return TestUser{User: u, Password: password}
}

// SessionCookies returns the cookies of a session logged in as user, encoded
// with store so a server using the same secret accepts them.
func SessionCookies(t *testing.T, store sessions.Store, user *domain.User) []*http.Cookie {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	login := session.Middleware(store)(func(c echo.Context) error {
		return auth.Login(c, user)
	})
	require.NoError(t, login(c))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

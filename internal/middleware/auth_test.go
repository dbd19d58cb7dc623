package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUsers is a minimal in-memory domain.UserRepository.
type memUsers struct {
	byID map[string]*domain.User
	err  error
}

func (m *memUsers) Create(ctx context.Context, u *domain.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *memUsers) RecordLogin(ctx context.Context, id string, at time.Time) error { return nil }

func TestRequireLogin(t *testing.T) {
	alice := &domain.User{ID: "01HZX5Q0000000000000000001", Username: "alice"}
	users := &memUsers{byID: map[string]*domain.User{alice.ID: alice}}

	e := echo.New()
	e.Use(session.Middleware(auth.NewCookieStore("a-very-secret-key-for-testing-!", false)))
	e.GET("/login-as/:id", func(c echo.Context) error {
		return auth.Login(c, &domain.User{ID: c.Param("id")})
	})
	e.GET("/private/", func(c echo.Context) error {
		user, ok := auth.CurrentUser(c)
		require.True(t, ok)
		return c.String(http.StatusOK, "hello "+user.Username)
	}, RequireLogin(users, "/accounts/login/"))

	do := func(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	loginAs := func(id string) []*http.Cookie {
		rec := do("/login-as/" + id)
		return rec.Result().Cookies()
	}

	t.Run("anonymous is redirected with next", func(t *testing.T) {
		rec := do("/private/?tab=1")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/accounts/login/?next=%2Fprivate%2F%3Ftab%3D1", rec.Header().Get(echo.HeaderLocation))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("logged in user reaches the handler", func(t *testing.T) {
		rec := do("/private/", loginAs(alice.ID)...)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello alice", rec.Body.String())
	})

	t.Run("stale session is redirected", func(t *testing.T) {
		rec := do("/private/", loginAs("01HZX5Q0000000000000000999")...)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "/accounts/login/")
	})

	t.Run("repository failure is an error", func(t *testing.T) {
		cookies := loginAs(alice.ID)
		users.err = errors.New("db down")
		t.Cleanup(func() { users.err = nil })

		rec := do("/private/", cookies...)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestLoginRedirectURL(t *testing.T) {
	assert.Equal(t, "/accounts/login/?next=%2Fusers%2F~update%2F", LoginRedirectURL("/accounts/login/", "/users/~update/"))
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	var dbErr error
	h := NewHealthHandler(pingFunc(func(ctx context.Context) error { return dbErr }))

	e := echo.New()
	e.GET("/healthz/", h.Healthz)
	e.GET("/readyz/", h.Readyz)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/healthz/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	assert.Equal(t, http.StatusOK, get("/readyz/").Code)

	dbErr = errors.New("connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz/").Code)
}

type nameForm struct {
	Name string `form:"name" validate:"max=5"`
	Nick string `form:"nick,omitempty" validate:"required"`
}

func TestValidatorFieldErrors(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&nameForm{Name: "héllo", Nick: "x"}), "max counts characters, not bytes")

	err := v.Validate(&nameForm{Name: strings.Repeat("é", 6)})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, map[string]string{
		"name": "Ensure this value has at most 5 characters (it has 6).",
		"nick": "This field is required.",
	}, fields)

	assert.Nil(t, FieldErrors(errors.New("other")))
}

func TestNewMigrationResponse(t *testing.T) {
	got := NewMigrationResponse(&domain.MigrationRecord{ID: 7, App: "users", Name: "0002_user_last_login"})
	assert.Equal(t, MigrationResponse{App: "users", Name: "0002_user_last_login"}, got)
}

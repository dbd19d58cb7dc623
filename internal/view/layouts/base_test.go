package layouts

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, n.Render(&buf))
	return buf.String()
}

func TestCalculateTitle(t *testing.T) {
	assert.Equal(t, "Quay", CalculateTitle(""))
	assert.Equal(t, "Profile - Quay", CalculateTitle("Profile"))
}

func TestBase(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		out := render(t, Base(Page{Title: "Log in"}, h.P(g.Text("body"))))

		assert.Contains(t, out, "<!doctype html>")
		assert.Contains(t, out, "<title>Log in - Quay</title>")
		assert.Contains(t, out, `href="/static/css/quay.css"`)
		assert.Contains(t, out, `hx-boost="true"`)
		assert.Contains(t, out, "<p>body</p>")
		assert.NotContains(t, out, "Log out")
		assert.NotContains(t, out, `id="flashes"`)
	})

	t.Run("logged in with flashes", func(t *testing.T) {
		out := render(t, Base(Page{
			Title:      "Profile",
			StaticURL:  "/assets",
			CSRFToken:  "tok",
			Username:   "alice",
			ProfileURL: "/users/1/",
			LogoutURL:  "/accounts/logout/",
			Flashes:    view.FlashData{Success: []string{"Saved <ok>"}, Error: []string{"Nope"}},
		}, nil))

		assert.Contains(t, out, `href="/assets/css/quay.css"`)
		assert.Contains(t, out, `<a href="/users/1/">alice</a>`)
		assert.Contains(t, out, `action="/accounts/logout/"`)
		assert.Contains(t, out, `<input type="hidden" name="_csrf" value="tok">`)
		assert.Contains(t, out, `hx-confirm="Log out?"`)
		assert.Contains(t, out, "Saved &lt;ok&gt;")
		assert.Contains(t, out, `class="flash error"`)
	})

	t.Run("unsafe profile link", func(t *testing.T) {
		out := render(t, Base(Page{Username: "mallory", ProfileURL: "javascript:alert(1)"}, nil))
		assert.NotContains(t, out, "javascript:")
	})
}

func TestDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Document(Page{Title: "Log in"}, h.P(g.Text("body"))).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<title>Log in - Quay</title>")
	assert.Contains(t, buf.String(), "<p>body</p>")
}

func TestPageFor(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CSRFContextKey, "token-1")
	c.Set(auth.UserContextKey, &domain.User{ID: "01J", Username: "alice"})

	p := PageFor(c, "Profile", "/static/")
	assert.Equal(t, "Profile", p.Title)
	assert.Equal(t, "token-1", p.CSRFToken)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "/users/01J/", p.ProfileURL)
	assert.Equal(t, "/accounts/logout/", p.LogoutURL)
	assert.True(t, p.Flashes.Empty())
}

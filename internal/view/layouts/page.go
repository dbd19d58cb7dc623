package layouts

import (
	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/view"
)

// CSRFContextKey is where the CSRF middleware leaves the request's token.
const CSRFContextKey = "csrf"

// PageFor fills the layout fields from the request: flashes are consumed,
// and the CSRF token and logged-in user are picked up when present.
func PageFor(c echo.Context, title, staticURL string) Page {
	p := Page{
		Title:     title,
		Flashes:   view.GetFlashData(c),
		StaticURL: staticURL,
		LogoutURL: view.LogoutURL,
	}
	if token, ok := c.Get(CSRFContextKey).(string); ok {
		p.CSRFToken = token
	}
	if user, ok := auth.CurrentUser(c); ok {
		p.Username = user.DisplayName()
		p.ProfileURL = view.ProfileURL(user.ID)
	}
	return p
}

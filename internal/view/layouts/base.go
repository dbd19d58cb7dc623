// Package layouts holds the page shell shared by every HTML page.
package layouts

import (
	"strings"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/quay/internal/view"
)

const (
	htmxSrc = "https://unpkg.com/htmx.org@2.0.4"
	homeURL = "/users/~redirect/"
)

// Page is what the layout needs besides the page body.
type Page struct {
	Title     string
	Flashes   view.FlashData
	CSRFToken string
	StaticURL string
	// Username and ProfileURL are set when someone is logged in.
	Username   string
	ProfileURL string
	LogoutURL  string
}

// CalculateTitle suffixes the page title with the site name.
func CalculateTitle(title string) string {
	if title != "" {
		return title + " - Quay"
	}
	return "Quay"
}

// Document is the full page as a templ.Component, ready for c.Render.
func Document(p Page, content g.Node) templ.Component {
	return view.AdaptGomponentToTempl(Base(p, content))
}

// Base wraps content in the full HTML document.
func Base(p Page, content g.Node) g.Node {
	static := p.StaticURL
	if static == "" {
		static = "/static/"
	}
	if !strings.HasSuffix(static, "/") {
		static += "/"
	}

	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text(CalculateTitle(p.Title))),
				h.Link(h.Rel("stylesheet"), h.Href(static+"css/quay.css")),
				h.Script(h.Src(htmxSrc), h.Defer()),
			),
			h.Body(
				hx.Boost("true"),
				siteHeader(p),
				h.Main(
					Flashes(p.Flashes),
					content,
				),
			),
		),
	)
}

func siteHeader(p Page) g.Node {
	return h.Header(
		h.Class("site"),
		h.A(h.Href(homeURL), g.Text("Quay")),
		g.If(p.Username != "",
			h.Nav(
				h.A(h.Href(view.SafeURL(p.ProfileURL)), g.Text(p.Username)),
				g.Text(" "),
				h.Form(
					h.Method("post"),
					h.Action(view.SafeURL(p.LogoutURL)),
					h.Style("display:inline"),
					CSRFField(p.CSRFToken),
					h.Button(h.Type("submit"), h.Class("link"), hx.Confirm("Log out?"), g.Text("Log out")),
				),
			),
		),
	)
}

// Flashes renders queued one-time messages.
func Flashes(f view.FlashData) g.Node {
	if f.Empty() {
		return nil
	}
	return h.Div(
		h.ID("flashes"),
		g.Map(f.Success, func(msg string) g.Node {
			return h.Div(h.Class("flash success"), h.Role("status"), g.Text(msg))
		}),
		g.Map(f.Error, func(msg string) g.Node {
			return h.Div(h.Class("flash error"), h.Role("alert"), g.Text(msg))
		}),
	)
}

// CSRFField is the hidden input checked by the CSRF middleware.
func CSRFField(token string) g.Node {
	if token == "" {
		return nil
	}
	return h.Input(h.Type("hidden"), h.Name("_csrf"), h.Value(token))
}

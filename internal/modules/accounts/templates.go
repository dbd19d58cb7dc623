package accounts

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/quay/internal/view/layouts"
)

// LoginData is the view model of the login page.
type LoginData struct {
	Action    string
	Next      string
	CSRFToken string
}

// LoginContent is the body of the login page.
func LoginContent(d LoginData) g.Node {
	return h.Section(
		h.H1(g.Text("Log in")),
		h.Form(
			h.Method("post"),
			h.Action(d.Action),
			layouts.CSRFField(d.CSRFToken),
			g.If(d.Next != "", h.Input(h.Type("hidden"), h.Name("next"), h.Value(d.Next))),
			h.Label(h.For("id_username"), g.Text("Username")),
			h.Input(h.Type("text"), h.ID("id_username"), h.Name("username"), h.AutoComplete("username"), h.Required(), h.AutoFocus()),
			h.Label(h.For("id_password"), g.Text("Password")),
			h.Input(h.Type("password"), h.ID("id_password"), h.Name("password"), h.AutoComplete("current-password"), h.Required()),
			h.Button(h.Type("submit"), g.Text("Log in")),
		),
	)
}

package users

import (
	"time"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/view"
	"github.com/nfrund/quay/internal/view/layouts"
)

const dateFormat = "January 2, 2006"

// ProfileData is the view model of the detail page.
type ProfileData struct {
	ID          string
	Username    string
	DisplayName string
	DateJoined  string
	LastLogin   string
}

// NewProfileData creates a ProfileData from a user.
func NewProfileData(u *domain.User) ProfileData {
	d := ProfileData{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		DateJoined:  u.DateJoined.Format(dateFormat),
	}
	if u.LastLogin != nil {
		d.LastLogin = u.LastLogin.Format(time.RFC1123)
	}
	return d
}

// UpdateFormData is the view model of the update form.
type UpdateFormData struct {
	Name      string
	Username  string
	CSRFToken string
	Errors    map[string]string
}

// ProfileContent is the body of the detail page.
func ProfileContent(d ProfileData) g.Node {
	return h.Section(
		h.H1(g.Text(d.DisplayName)),
		h.Dl(
			h.Class("profile"),
			h.Dt(g.Text("Username")),
			h.Dd(g.Text(d.Username)),
			h.Dt(g.Text("Identifier")),
			h.Dd(h.Code(g.Text(d.ID))),
			h.Dt(g.Text("Joined")),
			h.Dd(g.Text(d.DateJoined)),
			g.If(d.LastLogin != "", g.Group{
				h.Dt(g.Text("Last login")),
				h.Dd(g.Text(d.LastLogin)),
			}),
		),
		h.P(h.A(h.Href(view.UpdateURL), g.Text("Edit your profile"))),
	)
}

// UpdateContent is the body of the update page.
func UpdateContent(d UpdateFormData) g.Node {
	nameErr := d.Errors["name"]

	return h.Section(
		h.H1(g.Text("Update profile")),
		h.P(g.Textf("Signed in as %s.", d.Username)),
		h.Form(
			h.Method("post"),
			h.Action(view.UpdateURL),
			g.Attr("novalidate"),
			layouts.CSRFField(d.CSRFToken),
			h.Label(h.For("id_name"), g.Text("Name")),
			h.Input(
				h.Type("text"),
				h.ID("id_name"),
				h.Name("name"),
				h.Value(d.Name),
				h.MaxLength("255"),
				g.If(nameErr != "", h.Aria("invalid", "true")),
			),
			g.If(nameErr != "", h.P(h.Class("field-error"), g.Text(nameErr))),
			h.Button(h.Type("submit"), g.Text("Save")),
		),
	)
}

package view

// Routes that pages link to.
const (
	UpdateURL   = "/users/~update/"
	RedirectURL = "/users/~redirect/"
	LogoutURL   = "/accounts/logout/"
)

// ProfileURL is the detail page of a user.
func ProfileURL(id string) string {
	return "/users/" + id + "/"
}

package accounts

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/audit"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/pubsub"
	"github.com/nfrund/quay/internal/view"
	"github.com/nfrund/quay/internal/view/layouts"
)

const (
	invalidLoginMessage = "Please enter a correct username and password."
	missingFieldMessage = "Please enter a username and password."
	loggedOutMessage    = "You have been logged out."
)

// LoginForm is the DTO bound from the login form.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// Handler serves the login and logout endpoints.
type Handler struct {
	users     domain.UserRepository
	loginURL  string
	staticURL string
	events    pubsub.Publisher

	// dummyHash is verified against for unknown usernames so both failure
	// paths cost one argon2 run.
	dummyOnce sync.Once
	dummyHash string
}

// NewHandler creates a new Handler.
func NewHandler(users domain.UserRepository, loginURL, staticURL string, events pubsub.Publisher) *Handler {
	return &Handler{users: users, loginURL: loginURL, staticURL: staticURL, events: events}
}

// LoginGet renders the login form.
func (h *Handler) LoginGet(c echo.Context) error {
	data := LoginData{
		Action: h.loginURL,
		Next:   SafeNext(c.QueryParam("next")),
	}
	page := layouts.PageFor(c, "Log in", h.staticURL)
	data.CSRFToken = page.CSRFToken
	return c.Render(http.StatusOK, "", layouts.Document(page, LoginContent(data)))
}

// LoginPost checks the credentials and starts a session.
func (h *Handler) LoginPost(c echo.Context) error {
	ctx := c.Request().Context()
	log := middleware.FromContext(ctx)

	var form LoginForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	form.Username = strings.TrimSpace(form.Username)
	next := SafeNext(form.Next)

	if err := c.Validate(&form); err != nil {
		view.SetFlashError(c, missingFieldMessage)
		return c.Redirect(http.StatusSeeOther, h.loginRedirect(next))
	}

	user, err := h.authenticate(c, form.Username, form.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		log.Info("Failed login attempt", "username", form.Username, "remote_ip", c.RealIP())
		audit.Emit(ctx, h.events, audit.LoginFailedEvent, "", audit.LoginFailed{Username: form.Username, RemoteIP: c.RealIP()})
		view.SetFlashError(c, invalidLoginMessage)
		return c.Redirect(http.StatusSeeOther, h.loginRedirect(next))
	}
	if err != nil {
		return err
	}

	if err := auth.Login(c, user); err != nil {
		return err
	}
	if err := h.users.RecordLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		log.Warn("Failed to record login time", "user_id", user.ID, "error", err)
	}
	log.Info("User logged in", "user_id", user.ID)
	audit.Emit(ctx, h.events, audit.UserLoggedInEvent, user.ID, audit.SessionEvent{RemoteIP: c.RealIP()})

	if next == "" {
		next = view.RedirectURL
	}
	return c.Redirect(http.StatusSeeOther, next)
}

// Logout ends the session.
func (h *Handler) Logout(c echo.Context) error {
	userID, _ := auth.SessionUserID(c)
	if err := auth.Logout(c); err != nil {
		return err
	}
	if userID != "" {
		audit.Emit(c.Request().Context(), h.events, audit.UserLoggedOutEvent, userID, audit.SessionEvent{RemoteIP: c.RealIP()})
	}
	view.SetFlashSuccess(c, loggedOutMessage)
	return c.Redirect(http.StatusSeeOther, h.loginURL)
}

func (h *Handler) authenticate(c echo.Context, username, password string) (*domain.User, error) {
	user, err := h.users.FindByUsername(c.Request().Context(), username)
	if errors.Is(err, domain.ErrNotFound) {
		_ = auth.VerifyPassword(password, h.dummy())
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (h *Handler) dummy() string {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = auth.HashPassword("quay-dummy-password")
	})
	return h.dummyHash
}

func (h *Handler) loginRedirect(next string) string {
	if next == "" {
		return h.loginURL
	}
	return h.loginURL + "?" + url.Values{"next": {next}}.Encode()
}

// SafeNext returns next when it is a local path on this site, else "".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return ""
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

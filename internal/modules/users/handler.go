package users

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/quay/internal/audit"
	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/handlers"
	"github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/pubsub"
	"github.com/nfrund/quay/internal/view"
	"github.com/nfrund/quay/internal/view/layouts"
)

const updatedMessage = "Information successfully updated"

// Handler serves the user profile pages.
type Handler struct {
	users     domain.UserRepository
	staticURL string
	events    pubsub.Publisher
}

// NewHandler creates a new Handler.
func NewHandler(users domain.UserRepository, staticURL string, events pubsub.Publisher) *Handler {
	return &Handler{users: users, staticURL: staticURL, events: events}
}

// Detail renders the read-only profile of the user named in the route.
func (h *Handler) Detail(c echo.Context) error {
	user, err := h.users.FindByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return err
	}

	page := layouts.PageFor(c, user.DisplayName(), h.staticURL)
	return c.Render(http.StatusOK, "", layouts.Document(page, ProfileContent(NewProfileData(user))))
}

// Redirect sends the caller to their own profile.
func (h *Handler) Redirect(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, view.ProfileURL(user.ID))
}

// UpdateGet renders the form pre-filled with the caller's current name.
func (h *Handler) UpdateGet(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return h.renderUpdate(c, UpdateFormData{Name: user.Name, Username: user.Username})
}

// UpdatePost saves the caller's display name. The record is always the
// session user's own; nothing in the request can select another one.
func (h *Handler) UpdatePost(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var form UpdateForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	form.Normalize()

	if err := c.Validate(&form); err != nil {
		fields := handlers.FieldErrors(err)
		if fields == nil {
			return err
		}
		return h.renderUpdate(c, UpdateFormData{Name: form.Name, Username: user.Username, Errors: fields})
	}

	ctx := c.Request().Context()
	if _, err := h.users.UpdateName(ctx, user.ID, form.Name); err != nil {
		return err
	}
	middleware.FromContext(ctx).Info("Updated display name")
	audit.Emit(ctx, h.events, audit.ProfileUpdatedEvent, user.ID, audit.ProfileUpdated{Field: "name"})

	view.SetFlashSuccess(c, updatedMessage)
	return c.Redirect(http.StatusSeeOther, view.ProfileURL(user.ID))
}

func (h *Handler) renderUpdate(c echo.Context, data UpdateFormData) error {
	page := layouts.PageFor(c, "Update profile", h.staticURL)
	data.CSRFToken = page.CSRFToken
	return c.Render(http.StatusOK, "", layouts.Document(page, UpdateContent(data)))
}

func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized)
	}
	return user, nil
}

// Package audit defines the events the application publishes about logins,
// profile changes and deployment runs, and the subscriber that writes them
// to the log.
package audit

import (
	"context"

	"github.com/nfrund/quay/internal/middleware"
	"github.com/nfrund/quay/internal/pubsub"
)

// MigrationsApplied reports a migrate hook run and the latest applied migration.
type MigrationsApplied struct {
	Applied int    `json:"applied"`
	App     string `json:"app"`
	Name    string `json:"name"`
}

// StaticCollected reports the outcome of a collectstatic hook run.
type StaticCollected struct {
	Copied     int `json:"copied"`
	Unmodified int `json:"unmodified"`
}

// LoginFailed is a rejected login attempt.
type LoginFailed struct {
	Username string `json:"username"`
	RemoteIP string `json:"remote_ip"`
}

// SessionEvent is a login or logout.
type SessionEvent struct {
	RemoteIP string `json:"remote_ip"`
}

// ProfileUpdated names the profile field a user changed.
type ProfileUpdated struct {
	Field string `json:"field"`
}

var (
	MigrationsAppliedEvent = pubsub.NewEvent[MigrationsApplied]("deploy.migrations_applied")
	StaticCollectedEvent   = pubsub.NewEvent[StaticCollected]("deploy.static_collected")
	UserLoggedInEvent      = pubsub.NewEvent[SessionEvent]("accounts.user_logged_in")
	UserLoggedOutEvent     = pubsub.NewEvent[SessionEvent]("accounts.user_logged_out")
	LoginFailedEvent       = pubsub.NewEvent[LoginFailed]("accounts.login_failed")
	ProfileUpdatedEvent    = pubsub.NewEvent[ProfileUpdated]("users.profile_updated")
)

// Emit publishes an audit event. A failed publish is logged and never fails
// the operation that caused it.
func Emit[T any](ctx context.Context, p pubsub.Publisher, event pubsub.Event[T], userID string, payload T) {
	if err := pubsub.Publish(ctx, p, event, userID, payload); err != nil {
		middleware.FromContext(ctx).Warn("Failed to publish audit event", "topic", event.Name(), "error", err)
	}
}

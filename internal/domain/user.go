package domain

import (
	"context"
	"time"
)

// User is an account record. Only Name is editable through the web; the
// other fields are owned by account management (the createuser command).
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	DateJoined   time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// DisplayName returns the name to show for the user, falling back to the
// username when no display name has been set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	// Create stores a new user. ID and DateJoined are assigned when empty.
	// Returns ErrUserAlreadyExists when the username is taken.
	Create(ctx context.Context, user *User) error

	// FindByID returns ErrNotFound when no user has the given id.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername returns ErrNotFound when no user has the given username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// UpdateName changes the display name of exactly one user and returns the
	// updated record.
	UpdateName(ctx context.Context, id, name string) (*User, error)

	// RecordLogin stamps the user's last successful login.
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

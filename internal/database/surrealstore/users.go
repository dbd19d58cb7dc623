package surrealstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/idx"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const userTable = "user"

// userRecord is the shape of a row in the user table.
type userRecord struct {
	ID           *surrealmodels.RecordID       `json:"id,omitempty"`
	Username     string                        `json:"username"`
	Name         string                        `json:"name"`
	PasswordHash string                        `json:"password_hash"`
	DateJoined   surrealmodels.CustomDateTime  `json:"date_joined"`
	UpdatedAt    surrealmodels.CustomDateTime  `json:"updated_at"`
	LastLogin    *surrealmodels.CustomDateTime `json:"last_login,omitempty"`
}

func (r *userRecord) toDomain() *domain.User {
	u := &domain.User{
		Username:     r.Username,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		DateJoined:   r.DateJoined.Time.UTC(),
		UpdatedAt:    r.UpdatedAt.Time.UTC(),
	}
	if r.ID != nil {
		u.ID = fmt.Sprint(r.ID.ID)
	}
	if r.LastLogin != nil {
		t := r.LastLogin.Time.UTC()
		u.LastLogin = &t
	}
	return u
}

// UserStore is the SurrealDB implementation of domain.UserRepository. Record
// ids are the user's ULID, so user:<ulid> maps one to one onto domain.User.ID.
type UserStore struct {
	db *surrealdb.DB
}

var _ domain.UserRepository = (*UserStore)(nil)

func (u *UserStore) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = idx.New()
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = now
	}
	user.UpdatedAt = now

	err := execute(ctx, u.db, `CREATE type::thing($tb, $id) CONTENT $data`, map[string]any{
		"tb": userTable,
		"id": user.ID,
		"data": map[string]any{
			"username":      user.Username,
			"name":          user.Name,
			"password_hash": user.PasswordHash,
			"date_joined":   surrealmodels.CustomDateTime{Time: user.DateJoined},
			"updated_at":    surrealmodels.CustomDateTime{Time: user.UpdatedAt},
		},
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !idx.Valid(id) {
		return nil, domain.ErrNotFound
	}
	return u.findOne(ctx, `SELECT * FROM type::thing($tb, $id)`, map[string]any{"tb": userTable, "id": id})
}

func (u *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return u.findOne(ctx, `SELECT * FROM user WHERE username = $username LIMIT 1`,
		map[string]any{"username": username})
}

// UpdateName filters on the table rather than updating the record id
// directly, since UPDATE on a missing record id would create it.
func (u *UserStore) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	if !idx.Valid(id) {
		return nil, domain.ErrNotFound
	}
	rec, err := queryOne[userRecord](ctx, u.db,
		`UPDATE user SET name = $name, updated_at = $now WHERE id = type::thing($tb, $id) RETURN AFTER`,
		map[string]any{
			"tb":   userTable,
			"id":   id,
			"name": name,
			"now":  surrealmodels.CustomDateTime{Time: time.Now().UTC()},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to update user name: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

func (u *UserStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	if !idx.Valid(id) {
		return domain.ErrNotFound
	}
	rec, err := queryOne[userRecord](ctx, u.db,
		`UPDATE user SET last_login = $at WHERE id = type::thing($tb, $id) RETURN AFTER`,
		map[string]any{
			"tb": userTable,
			"id": id,
			"at": surrealmodels.CustomDateTime{Time: at.UTC()},
		})
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (u *UserStore) findOne(ctx context.Context, sql string, params map[string]any) (*domain.User, error) {
	rec, err := queryOne[userRecord](ctx, u.db, sql, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists")
}

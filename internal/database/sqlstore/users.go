package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/idx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const userColumns = `id, username, name, password_hash, date_joined, updated_at, last_login`

// UserStore is the SQL implementation of domain.UserRepository.
type UserStore struct {
	store *Store
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

	query := u.store.rebind(`INSERT INTO users (id, username, name, password_hash, date_joined, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := u.store.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Name, user.PasswordHash, user.DateJoined, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (u *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return u.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (u *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return u.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (u *UserStore) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	query := u.store.rebind(`UPDATE users SET name = ?, updated_at = ? WHERE id = ?`)
	res, err := u.store.db.ExecContext(ctx, query, name, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user name: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrNotFound
	}
	return u.FindByID(ctx, id)
}

func (u *UserStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	query := u.store.rebind(`UPDATE users SET last_login = ? WHERE id = ?`)
	res, err := u.store.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (u *UserStore) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := u.store.db.QueryRowContext(ctx, u.store.rebind(query), arg)

	var (
		user      domain.User
		lastLogin sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.PasswordHash,
		&user.DateJoined, &user.UpdatedAt, &lastLogin)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return &user, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

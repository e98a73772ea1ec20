package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, email, password_hash, name, avatar, is_active, last_seen, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var lastSeen sql.NullTime
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Avatar,
		&u.IsActive,
		&lastSeen,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	u.LastSeen = mapNullTimePtr(lastSeen)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email))
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, avatar, is_active, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		domain.NormalizeEmail(u.Email),
		u.PasswordHash,
		u.Name,
		u.Avatar,
		u.IsActive,
		mapOptionalTime(u.LastSeen),
	)
	return mapErr(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, name, avatar *string) error {
	if name == nil && avatar == nil {
		return nil
	}
	_, err := r.q.ExecContext(ctx,
		`UPDATE users
		 SET name = COALESCE(?, name),
		     avatar = COALESCE(?, avatar),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, avatar, userID)
	return mapErr(err)
}

func (r *usersRepo) TouchLastSeen(ctx context.Context, userID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET last_seen = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		at.UTC(), userID)
	return mapErr(err)
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, userID)
	return mapErr(err)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, mapErr(err)
	}
	return count == 0, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/finkeeper/finkeeper/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (email, full_name, avatar_url, google_id, provider, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, email, full_name, avatar_url, google_id, provider, is_active, created_at, updated_at;`

	qUserByID = `
SELECT id, email, full_name, avatar_url, google_id, provider, is_active, created_at, updated_at
FROM users
WHERE id = $1;`

	qUserByEmail = `
SELECT id, email, full_name, avatar_url, google_id, provider, is_active, created_at, updated_at
FROM users
WHERE email = $1;`

	qUserUpdate = `
UPDATE users
SET full_name  = $2,
    avatar_url = $3,
    updated_at = NOW()
WHERE id = $1
RETURNING id, email, full_name, avatar_url, google_id, provider, is_active, created_at, updated_at;`

	qUserSetActive = `
UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := scanUser(r.db.execQueryer(ctx).QueryRow(ctx, qUserInsert,
		u.Email, u.FullName, u.AvatarURL, u.GoogleID, u.Provider, u.IsActive), u)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUserRow(r.db.execQueryer(ctx).QueryRow(ctx, qUserByID, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUserRow(r.db.execQueryer(ctx).QueryRow(ctx, qUserByEmail, email), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := scanUser(r.db.execQueryer(ctx).QueryRow(ctx, qUserUpdate, u.ID, u.FullName, u.AvatarURL), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qUserSetActive, id, active)
	if err != nil {
		return fmt.Errorf("user set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row, out *user.User) error {
	return row.Scan(&out.ID, &out.Email, &out.FullName, &out.AvatarURL,
		&out.GoogleID, &out.Provider, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
}

func scanUserRow(row pgx.Row, out *user.User) error {
	if err := scanUser(row, out); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	return nil
}

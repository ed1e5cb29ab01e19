package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/finkeeper/finkeeper/internal/domain/category"
)

var _ category.Repo = (*CategoryRepo)(nil)

type CategoryRepo struct {
	db *DB
}

func NewCategoryRepo(db *DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, user_id, name, type, icon, color, is_default, created_at, updated_at`

const (
	qCategoryInsert = `
INSERT INTO categories (user_id, name, type, icon, color, is_default)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + categoryCols + `;`

	qCategoryByID = `
SELECT ` + categoryCols + ` FROM categories WHERE id = $1;`

	qCategoriesByUser = `
SELECT ` + categoryCols + ` FROM categories WHERE user_id = $1 ORDER BY id;`

	qCategoryDelete = `DELETE FROM categories WHERE id = $1;`

	qCategoryCount = `SELECT COUNT(*) FROM categories WHERE user_id = $1;`
)

func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := scanCategory(r.db.execQueryer(ctx).QueryRow(ctx, qCategoryInsert,
		c.UserID, c.Name, c.Kind, c.Icon, c.Color, c.IsDefault), c)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("category insert: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c category.Category
	if err := scanCategory(r.db.execQueryer(ctx).QueryRow(ctx, qCategoryByID, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("category by id: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepo) ListByUser(ctx context.Context, userID int64) ([]*category.Category, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qCategoriesByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("categories by user: %w", err)
	}
	defer rows.Close()

	var out []*category.Category
	for rows.Next() {
		var c category.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qCategoryDelete, id)
	if err != nil {
		return fmt.Errorf("category delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qCategoryCount, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("category count: %w", err)
	}
	return n, nil
}

func scanCategory(row pgx.Row, out *category.Category) error {
	return row.Scan(&out.ID, &out.UserID, &out.Name, &out.Kind, &out.Icon,
		&out.Color, &out.IsDefault, &out.CreatedAt, &out.UpdatedAt)
}

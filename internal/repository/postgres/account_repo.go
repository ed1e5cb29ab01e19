package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/finkeeper/finkeeper/internal/domain/account"
)

var _ account.Repo = (*AccountRepo)(nil)

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

const accountCols = `id, user_id, name, type, balance, currency, icon, color, is_default, created_at, updated_at`

const (
	qAccountInsert = `
INSERT INTO accounts (user_id, name, type, balance, currency, icon, color, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + accountCols + `;`

	qAccountByID = `
SELECT ` + accountCols + ` FROM accounts WHERE id = $1;`

	qAccountsByUser = `
SELECT ` + accountCols + ` FROM accounts
WHERE user_id = $1
ORDER BY is_default DESC, id;`

	qAccountUpdate = `
UPDATE accounts
SET name = $2, balance = $3, icon = $4, color = $5, updated_at = NOW()
WHERE id = $1
RETURNING ` + accountCols + `;`

	qAccountDelete = `DELETE FROM accounts WHERE id = $1;`

	qAccountAdjust = `
UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE id = $1;`

	qAccountCount = `SELECT COUNT(*) FROM accounts WHERE user_id = $1;`

	qAccountTotal = `SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE user_id = $1;`
)

func (r *AccountRepo) Create(ctx context.Context, a *account.Account) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := scanAccount(r.db.execQueryer(ctx).QueryRow(ctx, qAccountInsert,
		a.UserID, a.Name, a.Type, a.Balance, a.Currency, a.Icon, a.Color, a.IsDefault), a)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("account insert: %w", err)
	}
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var a account.Account
	if err := scanAccount(r.db.execQueryer(ctx).QueryRow(ctx, qAccountByID, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("account by id: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) ListByUser(ctx context.Context, userID int64) ([]*account.Account, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qAccountsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("accounts by user: %w", err)
	}
	defer rows.Close()

	var out []*account.Account
	for rows.Next() {
		var a account.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) Update(ctx context.Context, a *account.Account) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := scanAccount(r.db.execQueryer(ctx).QueryRow(ctx, qAccountUpdate,
		a.ID, a.Name, a.Balance, a.Icon, a.Color), a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("account update: %w", err)
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qAccountDelete, id)
	if err != nil {
		return fmt.Errorf("account delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepo) AdjustBalance(ctx context.Context, id int64, delta int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qAccountAdjust, id, delta)
	if err != nil {
		return fmt.Errorf("account adjust balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qAccountCount, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("account count: %w", err)
	}
	return n, nil
}

func (r *AccountRepo) TotalBalanceByUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var total int64
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qAccountTotal, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("account total balance: %w", err)
	}
	return total, nil
}

func scanAccount(row pgx.Row, out *account.Account) error {
	return row.Scan(&out.ID, &out.UserID, &out.Name, &out.Type, &out.Balance,
		&out.Currency, &out.Icon, &out.Color, &out.IsDefault, &out.CreatedAt, &out.UpdatedAt)
}

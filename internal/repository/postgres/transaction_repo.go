package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finkeeper/finkeeper/internal/domain/transaction"
)

var _ transaction.Repo = (*TransactionRepo)(nil)

type TransactionRepo struct {
	db *DB
}

func NewTransactionRepo(db *DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txCols = `id, user_id, account_id, category_id, type, amount, description, tx_date, notes, tags, created_at, updated_at`

const (
	qTxInsert = `
INSERT INTO transactions (user_id, account_id, category_id, type, amount, description, tx_date, notes, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + txCols + `;`

	qTxByID = `
SELECT ` + txCols + ` FROM transactions WHERE id = $1;`

	qTxByUser = `
SELECT ` + txCols + ` FROM transactions
WHERE user_id = $1
ORDER BY tx_date DESC, id DESC;`

	qTxByUserRange = `
SELECT ` + txCols + ` FROM transactions
WHERE user_id = $1 AND tx_date BETWEEN $2 AND $3
ORDER BY tx_date DESC, id DESC;`

	qTxDelete = `DELETE FROM transactions WHERE id = $1;`

	qTxCount = `SELECT COUNT(*) FROM transactions WHERE user_id = $1;`

	qTxSum = `
SELECT COALESCE(SUM(amount), 0) FROM transactions
WHERE user_id = $1 AND type = $2 AND tx_date BETWEEN $3 AND $4;`
)

func (r *TransactionRepo) Create(ctx context.Context, t *transaction.Transaction) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := scanTx(r.db.execQueryer(ctx).QueryRow(ctx, qTxInsert,
		t.UserID, t.AccountID, t.CategoryID, t.Kind, t.Amount,
		t.Description, t.Date, t.Notes, t.Tags), t)
	if err != nil {
		return fmt.Errorf("transaction insert: %w", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t transaction.Transaction
	if err := scanTx(r.db.execQueryer(ctx).QueryRow(ctx, qTxByID, id), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("transaction by id: %w", err)
	}
	return &t, nil
}

func (r *TransactionRepo) ListByUser(ctx context.Context, userID int64) ([]*transaction.Transaction, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qTxByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("transactions by user: %w", err)
	}
	return collectTxs(rows)
}

func (r *TransactionRepo) ListByUserAndRange(ctx context.Context, userID int64, from, to time.Time) ([]*transaction.Transaction, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qTxByUserRange, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("transactions by range: %w", err)
	}
	return collectTxs(rows)
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qTxDelete, id)
	if err != nil {
		return fmt.Errorf("transaction delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qTxCount, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("transaction count: %w", err)
	}
	return n, nil
}

func (r *TransactionRepo) SumByUserKindAndRange(ctx context.Context, userID int64, kind transaction.Kind, from, to time.Time) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var sum int64
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qTxSum, userID, kind, from, to).Scan(&sum); err != nil {
		return 0, fmt.Errorf("transaction sum: %w", err)
	}
	return sum, nil
}

func collectTxs(rows pgx.Rows) ([]*transaction.Transaction, error) {
	defer rows.Close()
	var out []*transaction.Transaction
	for rows.Next() {
		var t transaction.Transaction
		if err := scanTx(rows, &t); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func scanTx(row pgx.Row, out *transaction.Transaction) error {
	return row.Scan(&out.ID, &out.UserID, &out.AccountID, &out.CategoryID,
		&out.Kind, &out.Amount, &out.Description, &out.Date, &out.Notes,
		&out.Tags, &out.CreatedAt, &out.UpdatedAt)
}

package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finkeeper/finkeeper/internal/domain/account"
	"github.com/finkeeper/finkeeper/internal/domain/category"
	"github.com/finkeeper/finkeeper/internal/domain/transaction"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidKind     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrAccountUnknown  = errors.New("account not found")
	ErrCategoryUnknown = errors.New("category not found")
	ErrKindMismatch    = errors.New("transaction type does not match category type")
)

type Usecase struct {
	txs        transaction.Repo
	accounts   account.Repo
	categories category.Repo
	transactor pg.Transactor
}

func NewUsecase(txs transaction.Repo, accounts account.Repo, categories category.Repo, transactor pg.Transactor) *Usecase {
	return &Usecase{
		txs:        txs,
		accounts:   accounts,
		categories: categories,
		transactor: transactor,
	}
}

type CreateParams struct {
	AccountID   int64            `json:"account_id"`
	CategoryID  int64            `json:"category_id"`
	Kind        transaction.Kind `json:"type"`
	Amount      int64            `json:"amount"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	Notes       string           `json:"notes"`
	Tags        string           `json:"tags"`
}

// Create records a transaction and applies its effect to the account
// balance in one database transaction, so a crash between the two writes
// cannot leave the balance out of step with the ledger.
func (u *Usecase) Create(ctx context.Context, userID int64, p CreateParams) (*transaction.Transaction, error) {
	if !p.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acc, err := u.accounts.GetByID(ctx, p.AccountID)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrAccountUnknown
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acc.UserID != userID {
		return nil, ErrForbidden
	}

	cat, err := u.categories.GetByID(ctx, p.CategoryID)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrCategoryUnknown
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if cat.UserID != userID {
		return nil, ErrForbidden
	}
	if string(cat.Kind) != string(p.Kind) {
		return nil, ErrKindMismatch
	}

	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	t := &transaction.Transaction{
		UserID:      userID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Kind:        p.Kind,
		Amount:      p.Amount,
		Description: p.Description,
		Date:        p.Date,
		Notes:       p.Notes,
		Tags:        p.Tags,
	}

	err = u.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := u.txs.Create(ctx, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if err := u.accounts.AdjustBalance(ctx, t.AccountID, t.BalanceDelta()); err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (u *Usecase) Get(ctx context.Context, requesterID, id int64) (*transaction.Transaction, error) {
	t, err := u.txs.GetByID(ctx, id)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.UserID != requesterID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (u *Usecase) List(ctx context.Context, userID int64, from, to time.Time) ([]*transaction.Transaction, error) {
	if from.IsZero() && to.IsZero() {
		return u.txs.ListByUser(ctx, userID)
	}
	if to.IsZero() {
		to = time.Now()
	}
	return u.txs.ListByUserAndRange(ctx, userID, from, to)
}

// Delete removes a transaction and reverses its balance effect atomically.
func (u *Usecase) Delete(ctx context.Context, requesterID, id int64) error {
	t, err := u.Get(ctx, requesterID, id)
	if err != nil {
		return err
	}
	return u.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := u.txs.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if err := u.accounts.AdjustBalance(ctx, t.AccountID, -t.BalanceDelta()); err != nil {
			return fmt.Errorf("reverse balance: %w", err)
		}
		return nil
	})
}

// Summary aggregates income and expense over a period.
type Summary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

func (u *Usecase) Summarize(ctx context.Context, userID int64, from, to time.Time) (*Summary, error) {
	if to.IsZero() {
		to = time.Now()
	}
	income, err := u.txs.SumByUserKindAndRange(ctx, userID, transaction.KindIncome, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum income: %w", err)
	}
	expense, err := u.txs.SumByUserKindAndRange(ctx, userID, transaction.KindExpense, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum expense: %w", err)
	}
	return &Summary{Income: income, Expense: expense, Net: income - expense}, nil
}

package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finkeeper/finkeeper/internal/domain/account"
	"github.com/finkeeper/finkeeper/internal/domain/category"
	"github.com/finkeeper/finkeeper/internal/domain/transaction"
	"github.com/finkeeper/finkeeper/internal/domain/user"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

var ErrNotFound = errors.New("user not found")

type Usecase struct {
	users      user.Repo
	accounts   account.Repo
	categories category.Repo
	txs        transaction.Repo
	now        func() time.Time
}

func NewUsecase(users user.Repo, accounts account.Repo, categories category.Repo, txs transaction.Repo) *Usecase {
	return &Usecase{
		users:      users,
		accounts:   accounts,
		categories: categories,
		txs:        txs,
		now:        time.Now,
	}
}

type UpdateParams struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

func (u *Usecase) Get(ctx context.Context, id int64) (*user.User, error) {
	usr, err := u.users.GetByID(ctx, id)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrNotFound
	}
	return usr, err
}

func (u *Usecase) UpdateProfile(ctx context.Context, id int64, p UpdateParams) (*user.User, error) {
	usr, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.FullName != nil {
		usr.FullName = *p.FullName
	}
	if p.AvatarURL != nil {
		usr.AvatarURL = *p.AvatarURL
	}
	if err := u.users.Update(ctx, usr); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return usr, nil
}

// Deactivate marks the account inactive. Existing tokens stop working on
// the next request because the auth middleware revokes tokens of inactive
// users as it sees them.
func (u *Usecase) Deactivate(ctx context.Context, id int64) error {
	if _, err := u.Get(ctx, id); err != nil {
		return err
	}
	return u.users.SetActive(ctx, id, false)
}

// Activate re-enables a deactivated account. A deactivated user cannot
// authenticate, so this is always done on their behalf by someone else.
func (u *Usecase) Activate(ctx context.Context, id int64) error {
	if _, err := u.Get(ctx, id); err != nil {
		return err
	}
	return u.users.SetActive(ctx, id, true)
}

// Stats assembles the aggregate counters shown on the profile screen. The
// monthly figures cover the current calendar month.
func (u *Usecase) Stats(ctx context.Context, id int64) (*user.Stats, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return nil, err
	}

	accounts, err := u.accounts.CountByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	categories, err := u.categories.CountByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	txCount, err := u.txs.CountByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	balance, err := u.accounts.TotalBalanceByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("total balance: %w", err)
	}

	now := u.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	income, err := u.txs.SumByUserKindAndRange(ctx, id, transaction.KindIncome, monthStart, now)
	if err != nil {
		return nil, fmt.Errorf("monthly income: %w", err)
	}
	expense, err := u.txs.SumByUserKindAndRange(ctx, id, transaction.KindExpense, monthStart, now)
	if err != nil {
		return nil, fmt.Errorf("monthly expense: %w", err)
	}

	return &user.Stats{
		UserID:            id,
		AccountsCount:     accounts,
		CategoriesCount:   categories,
		TransactionsCount: txCount,
		TotalBalance:      balance,
		MonthlyIncome:     income,
		MonthlyExpense:    expense,
	}, nil
}

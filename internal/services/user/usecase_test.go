package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkeeper/finkeeper/internal/domain/account"
	"github.com/finkeeper/finkeeper/internal/domain/category"
	"github.com/finkeeper/finkeeper/internal/domain/transaction"
	"github.com/finkeeper/finkeeper/internal/domain/user"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

type fakeUsers struct {
	byID map[int64]*user.User
}

func (f *fakeUsers) Create(context.Context, *user.User) error { return nil }

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, pg.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, u *user.User) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := f.byID[id]
	if !ok {
		return pg.ErrNotFound
	}
	u.IsActive = active
	return nil
}

type fakeAccounts struct {
	account.Repo
	count   int64
	balance int64
}

func (f *fakeAccounts) CountByUser(context.Context, int64) (int64, error) { return f.count, nil }
func (f *fakeAccounts) TotalBalanceByUser(context.Context, int64) (int64, error) {
	return f.balance, nil
}

type fakeCategories struct {
	category.Repo
	count int64
}

func (f *fakeCategories) CountByUser(context.Context, int64) (int64, error) { return f.count, nil }

type fakeTxs struct {
	transaction.Repo
	count   int64
	income  int64
	expense int64
}

func (f *fakeTxs) CountByUser(context.Context, int64) (int64, error) { return f.count, nil }

func (f *fakeTxs) SumByUserKindAndRange(_ context.Context, _ int64, kind transaction.Kind, _, _ time.Time) (int64, error) {
	if kind == transaction.KindIncome {
		return f.income, nil
	}
	return f.expense, nil
}

func newTestUsecase() (*Usecase, *fakeUsers) {
	users := &fakeUsers{byID: map[int64]*user.User{
		1: {ID: 1, Email: "alice@example.com", FullName: "Alice", IsActive: true},
	}}
	uc := NewUsecase(users,
		&fakeAccounts{count: 3, balance: 1_500_000},
		&fakeCategories{count: 7},
		&fakeTxs{count: 42, income: 900_000, expense: 400_000},
	)
	return uc, users
}

func TestUpdateProfile(t *testing.T) {
	uc, users := newTestUsecase()
	ctx := context.Background()

	name := "Alice B"
	avatar := "https://example.com/b.png"
	got, err := uc.UpdateProfile(ctx, 1, UpdateParams{FullName: &name, AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.FullName)
	assert.Equal(t, avatar, got.AvatarURL)
	assert.Equal(t, "Alice B", users.byID[1].FullName)

	_, err = uc.UpdateProfile(ctx, 99, UpdateParams{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	uc, users := newTestUsecase()
	ctx := context.Background()

	require.NoError(t, uc.Deactivate(ctx, 1))
	assert.False(t, users.byID[1].IsActive)

	assert.ErrorIs(t, uc.Deactivate(ctx, 99), ErrNotFound)
}

func TestActivate_RestoresAccess(t *testing.T) {
	uc, users := newTestUsecase()
	ctx := context.Background()

	require.NoError(t, uc.Deactivate(ctx, 1))
	require.False(t, users.byID[1].IsActive)

	require.NoError(t, uc.Activate(ctx, 1))
	assert.True(t, users.byID[1].IsActive)

	assert.ErrorIs(t, uc.Activate(ctx, 99), ErrNotFound)
}

func TestStats(t *testing.T) {
	uc, _ := newTestUsecase()

	s, err := uc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.AccountsCount)
	assert.Equal(t, int64(7), s.CategoriesCount)
	assert.Equal(t, int64(42), s.TransactionsCount)
	assert.Equal(t, int64(1_500_000), s.TotalBalance)
	assert.Equal(t, int64(900_000), s.MonthlyIncome)
	assert.Equal(t, int64(400_000), s.MonthlyExpense)

	_, err = uc.Stats(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkeeper/finkeeper/internal/domain/account"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

type fakeRepo struct {
	byID   map[int64]*account.Account
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[int64]*account.Account{}, nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, a *account.Account) error {
	for _, other := range f.byID {
		if other.UserID == a.UserID && other.Name == a.Name {
			return pg.ErrConflict
		}
	}
	a.ID = f.nextID
	f.nextID++
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*account.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID int64) ([]*account.Account, error) {
	var out []*account.Account
	for _, a := range f.byID {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, a *account.Account) error {
	if _, ok := f.byID[a.ID]; !ok {
		return pg.ErrNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) AdjustBalance(_ context.Context, id int64, delta int64) error {
	a, ok := f.byID[id]
	if !ok {
		return pg.ErrNotFound
	}
	a.Balance += delta
	return nil
}

func (f *fakeRepo) CountByUser(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, a := range f.byID {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) TotalBalanceByUser(_ context.Context, userID int64) (int64, error) {
	var sum int64
	for _, a := range f.byID {
		if a.UserID == userID {
			sum += a.Balance
		}
	}
	return sum, nil
}

func TestCreate(t *testing.T) {
	uc := NewUsecase(newFakeRepo())
	ctx := context.Background()

	a, err := uc.Create(ctx, 1, CreateParams{Name: "Cash", Type: account.TypeCash, Balance: 500})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Equal(t, "VND", a.Currency)

	_, err = uc.Create(ctx, 1, CreateParams{Name: "Cash", Type: account.TypeCash})
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = uc.Create(ctx, 1, CreateParams{Name: "Weird", Type: "PIGGY_BANK"})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestGet_Ownership(t *testing.T) {
	uc := NewUsecase(newFakeRepo())
	ctx := context.Background()

	a, err := uc.Create(ctx, 1, CreateParams{Name: "Cash", Type: account.TypeCash})
	require.NoError(t, err)

	_, err = uc.Get(ctx, 2, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.Get(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_PartialPatch(t *testing.T) {
	uc := NewUsecase(newFakeRepo())
	ctx := context.Background()

	a, err := uc.Create(ctx, 1, CreateParams{Name: "Cash", Type: account.TypeCash, Balance: 100, Icon: "wallet"})
	require.NoError(t, err)

	name := "Wallet"
	got, err := uc.Update(ctx, 1, a.ID, UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Wallet", got.Name)
	assert.Equal(t, int64(100), got.Balance)
	assert.Equal(t, "wallet", got.Icon)
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo()
	uc := NewUsecase(repo)
	ctx := context.Background()

	a, err := uc.Create(ctx, 1, CreateParams{Name: "Cash", Type: account.TypeCash})
	require.NoError(t, err)

	require.ErrorIs(t, uc.Delete(ctx, 2, a.ID), ErrForbidden)
	require.NoError(t, uc.Delete(ctx, 1, a.ID))
	assert.Empty(t, repo.byID)
}

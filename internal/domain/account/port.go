package account

import "context"

type Repo interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	ListByUser(ctx context.Context, userID int64) ([]*Account, error)
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id int64) error
	AdjustBalance(ctx context.Context, id int64, delta int64) error
	CountByUser(ctx context.Context, userID int64) (int64, error)
	TotalBalanceByUser(ctx context.Context, userID int64) (int64, error)
}

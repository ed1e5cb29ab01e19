package transaction

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	ListByUser(ctx context.Context, userID int64) ([]*Transaction, error)
	ListByUserAndRange(ctx context.Context, userID int64, from, to time.Time) ([]*Transaction, error)
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int64, error)
	SumByUserKindAndRange(ctx context.Context, userID int64, kind Kind, from, to time.Time) (int64, error)
}

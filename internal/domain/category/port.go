package category

import "context"

type Repo interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	ListByUser(ctx context.Context, userID int64) ([]*Category, error)
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

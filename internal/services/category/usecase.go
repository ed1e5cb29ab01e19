package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/finkeeper/finkeeper/internal/domain/category"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

var (
	ErrNotFound    = errors.New("category not found")
	ErrForbidden   = errors.New("forbidden")
	ErrNameTaken   = errors.New("category name already exists")
	ErrInvalidKind = errors.New("invalid category type")
)

type Usecase struct {
	repo category.Repo
}

func NewUsecase(repo category.Repo) *Usecase { return &Usecase{repo: repo} }

type CreateParams struct {
	Name      string        `json:"name"`
	Kind      category.Kind `json:"type"`
	Icon      string        `json:"icon"`
	Color     string        `json:"color"`
	IsDefault bool          `json:"is_default"`
}

func (u *Usecase) Create(ctx context.Context, userID int64, p CreateParams) (*category.Category, error) {
	if !p.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	c := &category.Category{
		UserID:    userID,
		Name:      p.Name,
		Kind:      p.Kind,
		Icon:      p.Icon,
		Color:     p.Color,
		IsDefault: p.IsDefault,
	}
	if err := u.repo.Create(ctx, c); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (u *Usecase) Get(ctx context.Context, requesterID, id int64) (*category.Category, error) {
	c, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != requesterID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (u *Usecase) List(ctx context.Context, userID int64, kind category.Kind) ([]*category.Category, error) {
	cats, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		return cats, nil
	}
	filtered := cats[:0]
	for _, c := range cats {
		if c.Kind == kind {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (u *Usecase) Delete(ctx context.Context, requesterID, id int64) error {
	if _, err := u.Get(ctx, requesterID, id); err != nil {
		return err
	}
	return u.repo.Delete(ctx, id)
}

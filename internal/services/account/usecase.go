package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/finkeeper/finkeeper/internal/domain/account"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrForbidden   = errors.New("forbidden")
	ErrNameTaken   = errors.New("account name already exists")
	ErrInvalidType = errors.New("invalid account type")
)

const defaultCurrency = "VND"

type Usecase struct {
	repo account.Repo
}

func NewUsecase(repo account.Repo) *Usecase { return &Usecase{repo: repo} }

type CreateParams struct {
	Name      string       `json:"name"`
	Type      account.Type `json:"type"`
	Balance   int64        `json:"balance"`
	Currency  string       `json:"currency"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	IsDefault bool         `json:"is_default"`
}

type UpdateParams struct {
	Name    *string `json:"name"`
	Balance *int64  `json:"balance"`
	Icon    *string `json:"icon"`
	Color   *string `json:"color"`
}

func (u *Usecase) Create(ctx context.Context, userID int64, p CreateParams) (*account.Account, error) {
	if !p.Type.Valid() {
		return nil, ErrInvalidType
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	a := &account.Account{
		UserID:    userID,
		Name:      p.Name,
		Type:      p.Type,
		Balance:   p.Balance,
		Currency:  p.Currency,
		Icon:      p.Icon,
		Color:     p.Color,
		IsDefault: p.IsDefault,
	}
	if err := u.repo.Create(ctx, a); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (u *Usecase) Get(ctx context.Context, requesterID, id int64) (*account.Account, error) {
	a, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.UserID != requesterID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (u *Usecase) List(ctx context.Context, userID int64) ([]*account.Account, error) {
	return u.repo.ListByUser(ctx, userID)
}

func (u *Usecase) Update(ctx context.Context, requesterID, id int64, p UpdateParams) (*account.Account, error) {
	a, err := u.Get(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	if p.Icon != nil {
		a.Icon = *p.Icon
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if err := u.repo.Update(ctx, a); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return a, nil
}

func (u *Usecase) Delete(ctx context.Context, requesterID, id int64) error {
	if _, err := u.Get(ctx, requesterID, id); err != nil {
		return err
	}
	return u.repo.Delete(ctx, id)
}

package account

import "time"

type Type string

const (
	TypeCash       Type = "CASH"
	TypeBank       Type = "BANK"
	TypeEWallet    Type = "E_WALLET"
	TypeCreditCard Type = "CREDIT_CARD"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCash, TypeBank, TypeEWallet, TypeCreditCard:
		return true
	}
	return false
}

// Account balance is kept in minor currency units.
type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

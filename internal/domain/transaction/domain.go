package transaction

import "time"

type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

func (k Kind) Valid() bool { return k == KindIncome || k == KindExpense }

// Transaction amount is kept in minor currency units and is always positive;
// Kind decides the sign of the balance adjustment.
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	AccountID   int64     `json:"account_id"`
	CategoryID  int64     `json:"category_id"`
	Kind        Kind      `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BalanceDelta is the signed effect of the transaction on its account.
func (t *Transaction) BalanceDelta() int64 {
	if t.Kind == KindIncome {
		return t.Amount
	}
	return -t.Amount
}

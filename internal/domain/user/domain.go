package user

import "time"

type Provider string

const ProviderGoogle Provider = "GOOGLE"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	GoogleID  string    `json:"-"`
	Provider  Provider  `json:"provider"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats is an aggregate snapshot of a user's bookkeeping data.
type Stats struct {
	UserID            int64 `json:"user_id"`
	AccountsCount     int64 `json:"accounts_count"`
	CategoriesCount   int64 `json:"categories_count"`
	TransactionsCount int64 `json:"transactions_count"`
	TotalBalance      int64 `json:"total_balance"`
	MonthlyIncome     int64 `json:"monthly_income"`
	MonthlyExpense    int64 `json:"monthly_expense"`
}

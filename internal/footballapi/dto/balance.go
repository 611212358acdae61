package dto

import "github.com/shopspring/decimal"

type Balance struct {
	Balance decimal.Decimal `json:"balance"`
}

// MoneyRequest serve para depósito e saque
type MoneyRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Type        string          `json:"type"` // deposit | withdraw | bet | win
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"` // pending | completed | failed
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type Pagination struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

package dto

import "github.com/shopspring/decimal"

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// PlaceBetRequest é o payload de POST /betting/place-bet.
// PredictedScore existe se e somente se BetType == "SCORE".
type PlaceBetRequest struct {
	FixtureID      int64  `json:"fixture_id"`
	BetType        string `json:"bet_type"` // WIN | DRAW | LOSS | SCORE
	Amount         int64  `json:"amount"`
	PredictedScore *Score `json:"predicted_score,omitempty"`
}

type PlaceBetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Bet é um item do histórico de apostas
type Bet struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	FixtureID      int64           `json:"fixture_id"`
	BetType        string          `json:"bet_type"`
	PredictedScore *Score          `json:"predicted_score,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Odds           decimal.Decimal `json:"odds"`
	PotentialWin   decimal.Decimal `json:"potential_win"`
	Status         string          `json:"status"` // PENDING | WON | LOST | CANCELLED
	Result         *string         `json:"result"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

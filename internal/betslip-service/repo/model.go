package repo

import "time"

// Status de uma tentativa de envio
const (
	StatusSubmitted = "SUBMITTED" // backend aceitou
	StatusRejected  = "REJECTED"  // backend respondeu success=false
	StatusFailed    = "FAILED"    // erro de transporte ou http
)

// Submission é uma tentativa de place-bet registrada no Postgres.
// Só tentativas que passaram na validação chegam aqui.
type Submission struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"-"`
	FixtureID     int64     `json:"fixture_id"`
	BetType       string    `json:"bet_type"`
	Amount        int64     `json:"amount"`
	PredictedHome *int      `json:"predicted_home,omitempty"`
	PredictedAway *int      `json:"predicted_away,omitempty"`
	Multiplier    string    `json:"multiplier"`
	Status        string    `json:"status"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

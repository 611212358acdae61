package events

import "time"

// Evento publicado no tópico "bet_submitted" depois que o backend aceitou a aposta
type BetSubmitted struct {
	SubmissionID   string    `json:"submission_id"`
	SessionID      string    `json:"session_id"`
	FixtureID      int64     `json:"fixture_id"`
	BetType        string    `json:"bet_type"` // WIN | DRAW | LOSS | SCORE
	Amount         int64     `json:"amount"`
	Multiplier     string    `json:"multiplier"` // decimal em texto, ex: "2.50"
	PotentialWin   string    `json:"potential_win"`
	PredictedHome  *int      `json:"predicted_home,omitempty"`
	PredictedAway  *int      `json:"predicted_away,omitempty"`
	BackendMessage string    `json:"backend_message,omitempty"`
	Ts             time.Time `json:"ts"`
}

package ws

import "github.com/radieske/football-betslip/pkg/contracts/events"

// ClientMsg é o que o navegador manda.
// Type: subscribe | unsubscribe | ping. FixtureID obrigatório em subscribe/unsubscribe.
type ClientMsg struct {
	Type      string `json:"type"`
	FixtureID int64  `json:"fixture_id"`
}

// ServerMsg é o que o hub manda de volta
type ServerMsg struct {
	Type       string                   `json:"type"` // prediction | pong | error
	Prediction *events.PredictionUpdate `json:"prediction,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Package betslip contém o núcleo do bet-slip: cálculo de odds/payout,
// validação de stake e seleção, montagem do payload de aposta e a máquina
// de estados de um slip em edição.
package betslip

import (
	"fmt"
	"strings"
)

// BetType é a seleção no formato que o backend espera
type BetType string

const (
	HomeWin    BetType = "WIN"
	Draw       BetType = "DRAW"
	AwayWin    BetType = "LOSS"
	ExactScore BetType = "SCORE"
)

func (b BetType) Valid() bool {
	switch b {
	case HomeWin, Draw, AwayWin, ExactScore:
		return true
	}
	return false
}

// ParseBetType aceita o código do backend em qualquer caixa
func ParseBetType(s string) (BetType, error) {
	b := BetType(strings.ToUpper(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBetType, s)
	}
	return b, nil
}

// Selection é o que o usuário escolheu. HomeScore/AwayScore guardam o texto
// digitado e só têm significado quando Type == ExactScore.
type Selection struct {
	Type      BetType `json:"bet_type"`
	HomeScore string  `json:"home_score,omitempty"`
	AwayScore string  `json:"away_score,omitempty"`
}

// Outcome monta uma seleção de resultado (WIN/DRAW/LOSS)
func Outcome(b BetType) Selection { return Selection{Type: b} }

// Score monta uma seleção de placar exato
func Score(home, away int) Selection {
	return Selection{Type: ExactScore, HomeScore: fmt.Sprint(home), AwayScore: fmt.Sprint(away)}
}

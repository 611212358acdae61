package betslip

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/radieske/football-betslip/internal/footballapi/dto"
)

// Limites de stake em unidades inteiras da moeda.
// A dica de 1.000.000.000 que aparecia no formulário antigo não vale aqui.
const (
	MinStake int64 = 10_000
	MaxStake int64 = 10_000_000
)

// Ticket é a saída de Validate. Os campos são privados para que o payload de
// aposta só possa ser montado a partir de entrada validada.
type Ticket struct {
	betType BetType
	stake   int64
	score   *dto.Score
}

func (t Ticket) BetType() BetType { return t.betType }
func (t Ticket) Stake() int64     { return t.stake }

// Score retorna o placar previsto; ok é false fora do mercado SCORE
func (t Ticket) Score() (dto.Score, bool) {
	if t.score == nil {
		return dto.Score{}, false
	}
	return *t.score, true
}

// Validate aplica as regras na ordem abaixo; a primeira que falha vence:
//  1. stake presente, numérico, finito e inteiro
//  2. MinStake <= stake <= MaxStake
//  3. SCORE exige os dois placares como inteiros >= 0
//  4. stake <= saldo
func Validate(stake string, sel Selection, balance decimal.Decimal) (Ticket, error) {
	amount, err := parseStake(stake)
	if err != nil {
		return Ticket{}, err
	}

	if amount < float64(MinStake) || amount > float64(MaxStake) {
		return Ticket{}, invalid(KindOutOfBounds,
			fmt.Sprintf("stake must be between %d and %d", MinStake, MaxStake))
	}
	t := Ticket{betType: sel.Type, stake: int64(amount)}

	switch {
	case sel.Type == ExactScore:
		home, okH := parseGoals(sel.HomeScore)
		away, okA := parseGoals(sel.AwayScore)
		if !okH || !okA {
			return Ticket{}, invalid(KindInvalidScore, "predicted score must be two non-negative integers")
		}
		t.score = &dto.Score{Home: home, Away: away}
	case !sel.Type.Valid():
		return Ticket{}, invalid(KindInvalidSelection, fmt.Sprintf("unknown bet type %q", sel.Type))
	}

	if decimal.NewFromInt(t.stake).GreaterThan(balance) {
		return Ticket{}, invalid(KindInsufficientBalance, "insufficient balance for this stake")
	}

	return t, nil
}

func parseStake(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, invalid(KindInvalidAmount, "stake is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(KindInvalidAmount, fmt.Sprintf("stake %q is not a number", raw))
	}
	// sem frações: a moeda não tem subunidade
	if v != math.Trunc(v) {
		return 0, invalid(KindInvalidAmount, "stake must be a whole amount")
	}
	return v, nil
}

func parseGoals(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

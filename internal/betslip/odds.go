package betslip

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ExactScoreMultiplier é fixo: o mercado de placar exato não usa a probabilidade do modelo
const ExactScoreMultiplier = 5

var hundred = decimal.NewFromInt(100)

// Probabilities são percentuais 0..100 vindos da previsão. Sem normalização.
type Probabilities struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Quote é o valor derivado exibido antes do envio
type Quote struct {
	Multiplier      decimal.Decimal `json:"multiplier"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
}

// Multiplier converte a seleção em multiplicador arredondado a 2 casas
// (meio para longe do zero). Probabilidade <= 0, NaN ou Inf resulta em 0,
// que significa "indisponível".
func Multiplier(b BetType, p Probabilities) decimal.Decimal {
	var prob float64
	switch b {
	case HomeWin:
		prob = p.Home
	case Draw:
		prob = p.Draw
	case AwayWin:
		prob = p.Away
	case ExactScore:
		return decimal.NewFromInt(ExactScoreMultiplier)
	default:
		return decimal.Zero
	}

	if math.IsNaN(prob) || math.IsInf(prob, 0) || prob <= 0 {
		return decimal.Zero
	}
	return hundred.Div(decimal.NewFromFloat(prob)).Round(2)
}

// PotentialPayout = stake × multiplier. Stake vazio, não numérico ou <= 0 dá 0.
func PotentialPayout(stake string, m decimal.Decimal) decimal.Decimal {
	s := strings.TrimSpace(stake)
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(m)
}

// Calculate é a derivação pura (seleção, probabilidades, stake) -> Quote
func Calculate(sel Selection, p Probabilities, stake string) Quote {
	m := Multiplier(sel.Type, p)
	return Quote{Multiplier: m, PotentialPayout: PotentialPayout(stake, m)}
}

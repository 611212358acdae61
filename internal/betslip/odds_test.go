package betslip

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMultiplierPerSelection(t *testing.T) {
	p := Probabilities{Home: 40, Draw: 30, Away: 30}

	tests := []struct {
		name string
		bet  BetType
		want string
	}{
		{"home win", HomeWin, "2.5"},
		{"draw rounds to 2 places", Draw, "3.33"},
		{"away win", AwayWin, "3.33"},
		{"exact score is flat", ExactScore, "5"},
		{"unknown type is unavailable", BetType("OVER"), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, dec(tt.want).Equal(Multiplier(tt.bet, p)), "got %s", Multiplier(tt.bet, p))
		})
	}
}

func TestMultiplierRoundsHalfAwayFromZero(t *testing.T) {
	// 100 / 16 = 6.25 exato; 100 / 64 = 1.5625 -> 1.56; 100 / 80 = 1.25
	assert.True(t, dec("6.25").Equal(Multiplier(HomeWin, Probabilities{Home: 16})))
	assert.True(t, dec("1.56").Equal(Multiplier(HomeWin, Probabilities{Home: 64})))
	// 100 / 32 = 3.125 -> 3.13
	assert.True(t, dec("3.13").Equal(Multiplier(HomeWin, Probabilities{Home: 32})))
}

func TestMultiplierGuardsDegenerateProbabilities(t *testing.T) {
	for _, prob := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := Multiplier(HomeWin, Probabilities{Home: prob, Draw: 50, Away: 50})
		assert.True(t, m.IsZero(), "prob %v gave %s", prob, m)
	}
	q := Calculate(Outcome(HomeWin), Probabilities{Home: 0, Draw: 50, Away: 50}, "50000")
	assert.True(t, q.Multiplier.IsZero())
	assert.True(t, q.PotentialPayout.IsZero())
}

func TestPotentialPayoutIgnoresBadStake(t *testing.T) {
	m := dec("2.5")
	for _, stake := range []string{"", "   ", "abc", "0", "-100", "NaN"} {
		assert.True(t, PotentialPayout(stake, m).IsZero(), "stake %q", stake)
	}
	assert.True(t, dec("25000").Equal(PotentialPayout(" 10000 ", m)))
}

func TestCalculateScenarioA(t *testing.T) {
	q := Calculate(Outcome(HomeWin), Probabilities{Home: 40, Draw: 30, Away: 30}, "50000")
	assert.True(t, dec("2.5").Equal(q.Multiplier))
	assert.True(t, dec("125000").Equal(q.PotentialPayout))
}

func TestCalculateScenarioD(t *testing.T) {
	q := Calculate(Score(2, 1), Probabilities{Home: 40, Draw: 30, Away: 30}, "100000")
	assert.True(t, dec("5").Equal(q.Multiplier))
	assert.True(t, dec("500000").Equal(q.PotentialPayout))
}

func TestCalculateIsIdempotent(t *testing.T) {
	p := Probabilities{Home: 37.5, Draw: 28.1, Away: 34.4}
	for _, sel := range []Selection{Outcome(HomeWin), Outcome(Draw), Outcome(AwayWin), Score(0, 0)} {
		a := Calculate(sel, p, "123456")
		b := Calculate(sel, p, "123456")
		assert.True(t, a.Multiplier.Equal(b.Multiplier))
		assert.True(t, a.PotentialPayout.Equal(b.PotentialPayout))
	}
}

package betslip

import "github.com/radieske/football-betslip/internal/footballapi/dto"

// BuildRequest monta o payload de place-bet. Não revalida: o Ticket já passou por Validate.
func BuildRequest(fixtureID int64, t Ticket) dto.PlaceBetRequest {
	req := dto.PlaceBetRequest{
		FixtureID: fixtureID,
		BetType:   string(t.betType),
		Amount:    t.stake,
	}
	if sc, ok := t.Score(); ok && t.betType == ExactScore {
		req.PredictedScore = &sc
	}
	return req
}

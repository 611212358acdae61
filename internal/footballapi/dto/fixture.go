package dto

// WinProbability chega em percentuais 0..100; não normalizamos a soma
type WinProbability struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

type Prediction struct {
	WinProbability  WinProbability `json:"win_probability"`
	PredictedScore  Score          `json:"predicted_score"`
	KeyFactors      []string       `json:"key_factors"`
	ConfidenceLevel float64        `json:"confidence_level"`
}

// PredictionData é o "data" de GET /fixtures/predict/{id}
type PredictionData struct {
	Prediction Prediction `json:"prediction"`
}

type Player struct {
	ID           int64   `json:"id"`
	Position     *string `json:"position"`
	Name         string  `json:"name"`
	ShirtNumber  int     `json:"shirt_number"`
	IsSubstitute int     `json:"is_substitute"`
	Grid         string  `json:"grid,omitempty"` // "linha:coluna"
}

type Lineup struct {
	Formation string            `json:"formation"`
	StartXI   map[string]Player `json:"startXI"`
	Sub       map[string]Player `json:"sub"`
}

// FixtureDetail traz só o que o bet-slip usa de GET /fixtures/{id}
type FixtureDetail struct {
	HomeLineup Lineup `json:"home_lineup"`
	AwayLineup Lineup `json:"away_lineup"`
}

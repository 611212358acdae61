package events

import "time"

// Publicado no canal Redis quando uma previsão nova chega do backend
type WinProbability struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

type PredictionUpdate struct {
	FixtureID      int64          `json:"fixture_id"`
	WinProbability WinProbability `json:"win_probability"`
	FetchedAt      time.Time      `json:"fetched_at"`
}

package topics

const (
	// Bets
	BetSubmitted = "bet_submitted"

	// Redis Pub/Sub
	PredictionBroadcast = "prediction_updates_broadcast"
)

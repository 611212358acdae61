package metrics

import "github.com/prometheus/client_golang/prometheus"

// Betslip agrupa os coletores do bet-slip. Registrados num Registerer explícito
// para que os testes possam usar um registry próprio.
type Betslip struct {
	Quotes            prometheus.Counter
	ValidationErrors  *prometheus.CounterVec // label: kind
	Submissions       *prometheus.CounterVec // label: outcome (success|failed|rejected)
	PredictionFetches *prometheus.CounterVec // label: source (cache|api|stale)
	SubmitLatency     prometheus.Histogram
}

func NewBetslip(reg prometheus.Registerer) *Betslip {
	m := &Betslip{
		Quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "betslip_quotes_total",
			Help: "cálculos de payout servidos",
		}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betslip_validation_errors_total",
			Help: "validações de stake/seleção que falharam, por tipo",
		}, []string{"kind"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betslip_submissions_total",
			Help: "envios de aposta ao backend, por resultado",
		}, []string{"outcome"}),
		PredictionFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betslip_prediction_fetches_total",
			Help: "leituras de previsão por origem",
		}, []string{"source"}),
		SubmitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "betslip_submit_duration_seconds",
			Help:    "latência do place-bet no backend",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Quotes, m.ValidationErrors, m.Submissions, m.PredictionFetches, m.SubmitLatency)
	return m
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/betslip"
	"github.com/radieske/football-betslip/internal/betslip-service/registry"
	"github.com/radieske/football-betslip/internal/betslip-service/repo"
	"github.com/radieske/football-betslip/internal/footballapi"
	"github.com/radieske/football-betslip/internal/footballapi/dto"
	"github.com/radieske/football-betslip/internal/prediction"
	"github.com/radieske/football-betslip/internal/session"
	"github.com/radieske/football-betslip/internal/shared/metrics"
	"github.com/radieske/football-betslip/pkg/contracts/events"
)

// SessionHeader carrega o id de sessão do BFF
const SessionHeader = "X-Session-ID"

// Backend é o client REST do site, preso a uma sessão
type Backend interface {
	Login(ctx context.Context, email, password string) (dto.LoginData, error)
	Register(ctx context.Context, r dto.RegisterRequest) (dto.RegisterData, error)
	Logout(ctx context.Context) error
	Balance(ctx context.Context) (decimal.Decimal, error)
	Deposit(ctx context.Context, amount int64, description string) error
	Withdraw(ctx context.Context, amount int64, description string) error
	Transactions(ctx context.Context, limit int) (dto.TransactionPage, error)
	Prediction(ctx context.Context, fixtureID int64) (dto.Prediction, error)
	Fixture(ctx context.Context, fixtureID int64) (dto.FixtureDetail, error)
	BettingHistory(ctx context.Context, page int) ([]dto.Bet, error)
}

type Auditor interface {
	Record(ctx context.Context, s *repo.Submission) (string, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]repo.Submission, error)
}

type BetPublisher interface {
	PublishBetSubmitted(ctx context.Context, e events.BetSubmitted) error
}

// Deps reúne os colaboradores do Server. Audit, Publisher, Metrics e WS são opcionais.
type Deps struct {
	Log         *zap.Logger
	Sessions    func(sessionID string) session.Store
	Backend     func(s session.Store) Backend
	Slips       *registry.Registry
	Predictions *prediction.Service
	Audit       Auditor
	Publisher   BetPublisher
	Metrics     *metrics.Betslip
	WS          http.Handler
	NewID       func() string
}

type Server struct {
	Deps
}

func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Server{Deps: d}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/v1/auth/login", s.login)
	r.Post("/v1/auth/register", s.register)

	r.Get("/v1/fixtures/{id}/prediction", s.getPrediction)
	r.Get("/v1/fixtures/{id}/formation", s.getFormation)
	r.Post("/v1/fixtures/{id}/quote", s.quote)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Post("/v1/auth/logout", s.logout)

		r.Get("/v1/balance", s.getBalance)
		r.Post("/v1/balance/deposit", s.deposit)
		r.Post("/v1/balance/withdraw", s.withdraw)
		r.Get("/v1/balance/transactions", s.transactions)

		r.Get("/v1/fixtures/{id}/slip", s.getSlip)
		r.Put("/v1/fixtures/{id}/slip", s.editSlip)
		r.Post("/v1/fixtures/{id}/slip/submit", s.submitSlip)

		r.Get("/v1/bets/history", s.history)
		r.Get("/v1/bets/attempts", s.attempts)
	})

	if s.WS != nil {
		r.Get("/ws", s.WS.ServeHTTP)
	}
	return withCORS(r)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusOf traduz erros de domínio e do backend para HTTP
func statusOf(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}

	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, footballapi.ErrTokenExpired):
		body.Kind = "unauthorized"
		return http.StatusUnauthorized, body
	}

	switch kind := betslip.KindOf(err); kind {
	case betslip.KindInvalidAmount, betslip.KindOutOfBounds, betslip.KindInvalidScore,
		betslip.KindInsufficientBalance, betslip.KindInvalidSelection:
		body.Kind = kind.String()
		return http.StatusUnprocessableEntity, body
	case betslip.KindBusy:
		body.Kind = kind.String()
		return http.StatusConflict, body
	case betslip.KindSubmissionFailed:
		body.Kind = kind.String()
		return http.StatusBadGateway, body
	}

	var apiErr *footballapi.APIError
	if errors.As(err, &apiErr) {
		body.Error = apiErr.Message
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, body
		}
		return http.StatusBadGateway, body
	}
	return http.StatusBadGateway, body
}

// fail responde o erro e, se o token venceu, descarta os slips da sessão
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, footballapi.ErrTokenExpired) {
		if sid, ok := sessionID(r.Context()); ok {
			s.Slips.DropSession(sid)
		}
	}
	status, body := statusOf(err)
	if status >= 500 {
		s.Log.Warn("request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, body)
}

func fixtureID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

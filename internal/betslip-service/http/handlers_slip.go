package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/betslip"
	"github.com/radieske/football-betslip/internal/betslip-service/repo"
	"github.com/radieske/football-betslip/internal/footballapi"
	"github.com/radieske/football-betslip/internal/formation"
	"github.com/radieske/football-betslip/pkg/contracts/events"
)

// flexText aceita "50000" ou 50000 no JSON e guarda o texto cru
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexText(s)
		return nil
	}
	*f = flexText(b)
	return nil
}

func (s *Server) getPrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := fixtureID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid fixture id")
		return
	}
	res, err := s.Predictions.Latest(r.Context(), s.backendFor(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Slips.UpdateProbabilities(id, res.Probabilities())
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getFormation(w http.ResponseWriter, r *http.Request) {
	id, ok := fixtureID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid fixture id")
		return
	}
	fx, err := s.backendFor(r).Fixture(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formation.Layout(fx.HomeLineup, fx.AwayLineup))
}

// probabilities devolve o último trio conhecido; sem previsão, ok=false
func (s *Server) probabilities(r *http.Request, id int64) (betslip.Probabilities, bool) {
	res, err := s.Predictions.Latest(r.Context(), s.backendFor(r), id)
	if err != nil {
		s.Log.Debug("prediction unavailable", zap.Int64("fixture_id", id), zap.Error(err))
		return betslip.Probabilities{}, false
	}
	p := res.Probabilities()
	s.Slips.UpdateProbabilities(id, p)
	return p, true
}

type quoteRequest struct {
	BetType   string   `json:"bet_type"`
	Stake     flexText `json:"stake"`
	HomeScore flexText `json:"home_score"`
	AwayScore flexText `json:"away_score"`
}

type quoteResponse struct {
	Selection     betslip.Selection      `json:"selection"`
	Stake         string                 `json:"stake"`
	Probabilities *betslip.Probabilities `json:"probabilities"`
	Quote         betslip.Quote          `json:"quote"`
}

// quote não exige sessão. A previsão resolvida aqui também é repassada
// aos slips abertos da partida.
func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	id, ok := fixtureID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid fixture id")
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	bt, err := betslip.ParseBetType(req.BetType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sel := betslip.Selection{Type: bt}
	if bt == betslip.ExactScore {
		sel.HomeScore, sel.AwayScore = string(req.HomeScore), string(req.AwayScore)
	}

	resp := quoteResponse{Selection: sel, Stake: string(req.Stake)}
	p, has := s.probabilities(r, id)
	if has {
		resp.Probabilities = &p
	}
	resp.Quote = betslip.Calculate(sel, p, string(req.Stake))
	s.countQuote()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) slipFor(w http.ResponseWriter, r *http.Request) (*betslip.Slip, bool) {
	id, ok := fixtureID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid fixture id")
		return nil, false
	}
	sid, _ := sessionID(r.Context())
	slip := s.Slips.Get(r.Context(), sid, id)
	if slip.Snapshot().Probabilities == nil {
		s.probabilities(r, id)
	}
	return slip, true
}

func (s *Server) getSlip(w http.ResponseWriter, r *http.Request) {
	slip, ok := s.slipFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, slip.Snapshot())
}

type slipEdit struct {
	BetType   *string   `json:"bet_type"`
	HomeScore *flexText `json:"home_score"`
	AwayScore *flexText `json:"away_score"`
	Stake     *flexText `json:"stake"`
}

// editSlip aplica só os campos enviados; o payout volta recalculado no snapshot
func (s *Server) editSlip(w http.ResponseWriter, r *http.Request) {
	slip, ok := s.slipFor(w, r)
	if !ok {
		return
	}
	var req slipEdit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}

	if req.BetType != nil || req.HomeScore != nil || req.AwayScore != nil {
		sel := slip.Snapshot().Selection
		if req.BetType != nil {
			bt, err := betslip.ParseBetType(*req.BetType)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			sel.Type = bt
		}
		if req.HomeScore != nil {
			sel.HomeScore = string(*req.HomeScore)
		}
		if req.AwayScore != nil {
			sel.AwayScore = string(*req.AwayScore)
		}
		if err := slip.SetSelection(sel); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if req.Stake != nil {
		if err := slip.SetStake(string(*req.Stake)); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.countQuote()
	writeJSON(w, http.StatusOK, slip.Snapshot())
}

type submitResponse struct {
	SubmissionID string           `json:"submission_id,omitempty"`
	Receipt      betslip.Receipt  `json:"receipt"`
	Slip         betslip.Snapshot `json:"slip"`
}

type submitFailure struct {
	errorBody
	Slip betslip.Snapshot `json:"slip"`
}

func (s *Server) submitSlip(w http.ResponseWriter, r *http.Request) {
	slip, ok := s.slipFor(w, r)
	if !ok {
		return
	}
	sid, _ := sessionID(r.Context())

	start := time.Now()
	rec, err := slip.Submit(r.Context())

	if err == nil {
		s.observeSubmit("success", start)
		// o saldo é da sessão: os outros slips também precisam do valor novo
		s.Slips.RefreshBalance(r.Context(), sid)
		subID := s.audit(r, sid, rec, repo.StatusSubmitted, rec.Message)
		s.publish(r, sid, subID, rec)
		writeJSON(w, http.StatusOK, submitResponse{SubmissionID: subID, Receipt: rec, Slip: slip.Snapshot()})
		return
	}

	var se *betslip.SubmissionError
	switch {
	case errors.As(err, &se):
		status, outcome := repo.StatusFailed, "failed"
		if se.Err == nil {
			status, outcome = repo.StatusRejected, "rejected"
		}
		s.observeSubmit(outcome, start)
		s.audit(r, sid, rec, status, se.Message)
		if errors.Is(err, footballapi.ErrTokenExpired) {
			s.Slips.DropSession(sid)
		}
	case betslip.KindOf(err) != betslip.KindBusy:
		if s.Metrics != nil {
			s.Metrics.ValidationErrors.WithLabelValues(betslip.KindOf(err).String()).Inc()
		}
	}

	code, body := statusOf(err)
	writeJSON(w, code, submitFailure{errorBody: body, Slip: slip.Snapshot()})
}

func (s *Server) countQuote() {
	if s.Metrics != nil {
		s.Metrics.Quotes.Inc()
	}
}

func (s *Server) observeSubmit(outcome string, start time.Time) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.Submissions.WithLabelValues(outcome).Inc()
	s.Metrics.SubmitLatency.Observe(time.Since(start).Seconds())
}

// audit grava a tentativa; falha de banco não muda a resposta ao usuário
func (s *Server) audit(r *http.Request, sid string, rec betslip.Receipt, status, msg string) string {
	if s.Audit == nil {
		return ""
	}
	sub := &repo.Submission{
		SessionID:  sid,
		FixtureID:  rec.Request.FixtureID,
		BetType:    rec.Request.BetType,
		Amount:     rec.Request.Amount,
		Multiplier: rec.Quote.Multiplier.StringFixed(2),
		Status:     status,
		Message:    msg,
	}
	if ps := rec.Request.PredictedScore; ps != nil {
		home, away := ps.Home, ps.Away
		sub.PredictedHome, sub.PredictedAway = &home, &away
	}
	id, err := s.Audit.Record(r.Context(), sub)
	if err != nil {
		s.Log.Error("record submission", zap.Int64("fixture_id", sub.FixtureID), zap.Error(err))
		return ""
	}
	return id
}

func (s *Server) publish(r *http.Request, sid, subID string, rec betslip.Receipt) {
	if s.Publisher == nil {
		return
	}
	e := events.BetSubmitted{
		SubmissionID:   subID,
		SessionID:      sid,
		FixtureID:      rec.Request.FixtureID,
		BetType:        rec.Request.BetType,
		Amount:         rec.Request.Amount,
		Multiplier:     rec.Quote.Multiplier.StringFixed(2),
		PotentialWin:   rec.Quote.PotentialPayout.StringFixed(2),
		BackendMessage: rec.Message,
	}
	if ps := rec.Request.PredictedScore; ps != nil {
		home, away := ps.Home, ps.Away
		e.PredictedHome, e.PredictedAway = &home, &away
	}
	if err := s.Publisher.PublishBetSubmitted(r.Context(), e); err != nil {
		s.Log.Error("publish bet_submitted", zap.Int64("fixture_id", e.FixtureID), zap.Error(err))
	}
}

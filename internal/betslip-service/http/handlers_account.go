package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/footballapi/dto"
)

type loginResponse struct {
	SessionID string `json:"session_id"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

func (s *Server) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// login abre uma sessão nova do BFF; o token do backend fica no Store
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, "email and password required")
		return
	}

	sid := s.newID()
	out, err := s.Backend(s.Sessions(sid)).Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Log.Info("session opened", zap.String("session_id", sid))
	writeJSON(w, http.StatusOK, loginResponse{SessionID: sid, TokenType: out.TokenType, ExpiresIn: out.ExpiresIn})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, "name, email and password required")
		return
	}
	out, err := s.backendFor(r).Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.User)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionID(r.Context())
	if err := s.backendFor(r).Logout(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.Slips.DropSession(sid)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.backendFor(r).Balance(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Balance{Balance: bal})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request)  { s.moveMoney(w, r, true) }
func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) { s.moveMoney(w, r, false) }

// moveMoney nunca ajusta saldo local: depois da operação o saldo é rebuscado
func (s *Server) moveMoney(w http.ResponseWriter, r *http.Request, deposit bool) {
	var req dto.MoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Amount <= 0 {
		writeErr(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	b := s.backendFor(r)
	var err error
	if deposit {
		err = b.Deposit(r.Context(), req.Amount, req.Description)
	} else {
		err = b.Withdraw(r.Context(), req.Amount, req.Description)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sid, _ := sessionID(r.Context())
	s.Slips.RefreshBalance(r.Context(), sid)

	bal, err := b.Balance(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Balance{Balance: bal})
}

func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	page, err := s.backendFor(r).Transactions(r.Context(), queryInt(r, "limit"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	bets, err := s.backendFor(r).BettingHistory(r.Context(), queryInt(r, "page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

// attempts lista as tentativas de envio gravadas por este serviço
func (s *Server) attempts(w http.ResponseWriter, r *http.Request) {
	if s.Audit == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	sid, _ := sessionID(r.Context())
	list, err := s.Audit.ListBySession(r.Context(), sid, queryInt(r, "limit"))
	if err != nil {
		s.Log.Error("list submissions", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "could not list attempts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/session"
)

type ctxKey int

const (
	ctxSessionID ctxKey = iota
	ctxStore
)

func sessionID(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxSessionID).(string)
	return sid, ok
}

func sessionStore(ctx context.Context) session.Store {
	st, _ := ctx.Value(ctxStore).(session.Store)
	return st
}

// requireSession barra rotas de aposta, saldo e histórico sem sessão com token
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(SessionHeader)
		if sid == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: SessionHeader + " header required", Kind: "unauthorized"})
			return
		}
		st := s.Sessions(sid)
		if _, err := st.Token(r.Context()); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "session not found or expired", Kind: "unauthorized"})
				return
			}
			s.Log.Error("session lookup failed", zap.Error(err))
			writeErr(w, http.StatusInternalServerError, "session lookup failed")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionID, sid)
		ctx = context.WithValue(ctx, ctxStore, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// backendFor usa a sessão do header se houver; rotas públicas seguem sem token
func (s *Server) backendFor(r *http.Request) Backend {
	if st := sessionStore(r.Context()); st != nil {
		return s.Backend(st)
	}
	if sid := r.Header.Get(SessionHeader); sid != "" {
		return s.Backend(s.Sessions(sid))
	}
	return s.Backend(session.NewMemory())
}

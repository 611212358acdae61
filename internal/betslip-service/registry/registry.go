// Package registry guarda um Slip por (sessão, partida) dentro do processo.
package registry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/betslip"
	"github.com/radieske/football-betslip/pkg/contracts/events"
)

// Backend é o que um slip precisa do backend remoto, já preso à sessão
type Backend interface {
	betslip.BetPlacer
	betslip.BalanceSource
}

// BackendFactory monta o Backend de uma sessão
type BackendFactory func(sessionID string) Backend

type slipKey struct {
	session string
	fixture int64
}

type entry struct {
	slip     *betslip.Slip
	lastUsed time.Time
}

type Registry struct {
	mu      sync.Mutex
	slips   map[slipKey]*entry
	backend BackendFactory
	log     *zap.Logger
	now     func() time.Time
}

func New(backend BackendFactory, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		slips:   make(map[slipKey]*entry),
		backend: backend,
		log:     log,
		now:     time.Now,
	}
}

// Get devolve o slip da sessão para a partida, criando se preciso.
// Na criação o saldo é buscado; falha só é logada.
func (r *Registry) Get(ctx context.Context, sessionID string, fixtureID int64) *betslip.Slip {
	k := slipKey{session: sessionID, fixture: fixtureID}

	r.mu.Lock()
	e, ok := r.slips[k]
	if ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.slip
	}
	b := r.backend(sessionID)
	s := betslip.NewSlip(fixtureID, b, b, r.log)
	r.slips[k] = &entry{slip: s, lastUsed: r.now()}
	r.mu.Unlock()

	if err := s.RefreshBalance(ctx); err != nil {
		r.log.Warn("initial balance fetch failed", zap.Int64("fixture_id", fixtureID), zap.Error(err))
	}
	return s
}

// UpdateProbabilities empurra a previsão nova para todos os slips da partida
func (r *Registry) UpdateProbabilities(fixtureID int64, p betslip.Probabilities) {
	for _, s := range r.collect(func(k slipKey) bool { return k.fixture == fixtureID }) {
		s.UpdateProbabilities(p)
	}
}

// ApplyPrediction recebe as atualizações do canal Redis, inclusive as de outras réplicas
func (r *Registry) ApplyPrediction(u events.PredictionUpdate) {
	wp := u.WinProbability
	r.UpdateProbabilities(u.FixtureID, betslip.Probabilities{Home: wp.Home, Draw: wp.Draw, Away: wp.Away})
}

// RefreshBalance rebusca o saldo em todos os slips da sessão (após depósito/saque)
func (r *Registry) RefreshBalance(ctx context.Context, sessionID string) {
	for _, s := range r.collect(func(k slipKey) bool { return k.session == sessionID }) {
		if err := s.RefreshBalance(ctx); err != nil {
			r.log.Warn("balance refresh failed", zap.Int64("fixture_id", s.FixtureID()), zap.Error(err))
		}
	}
}

// DropSession descarta os slips de uma sessão (logout ou token expirado)
func (r *Registry) DropSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.slips {
		if k.session == sessionID {
			delete(r.slips, k)
		}
	}
}

// Sweep remove slips parados há mais que maxIdle. Slip em envio nunca é removido.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for k, e := range r.slips {
		if e.lastUsed.Before(cutoff) && e.slip.State() != betslip.Submitting {
			delete(r.slips, k)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slips)
}

// StartSweeper roda Sweep a cada interval até ctx terminar
func (r *Registry) StartSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := r.Sweep(maxIdle); n > 0 {
					r.log.Info("idle slips evicted", zap.Int("count", n))
				}
			}
		}
	}()
}

func (r *Registry) collect(match func(slipKey) bool) []*betslip.Slip {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*betslip.Slip
	for k, e := range r.slips {
		if match(k) {
			out = append(out, e.slip)
		}
	}
	return out
}

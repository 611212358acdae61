package betslip

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/footballapi/dto"
)

// State do slip: Idle -> Editing -> Submitting -> (Idle | Editing)
type State int

const (
	Idle State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

const (
	defaultFailureMessage = "an error occurred while placing the bet"
	defaultRejectMessage  = "bet placement failed"
	defaultSuccessMessage = "bet placed"
)

// BetPlacer é o colaborador que envia a aposta ao backend
type BetPlacer interface {
	PlaceBet(ctx context.Context, req dto.PlaceBetRequest) (dto.PlaceBetResponse, error)
}

// BalanceSource devolve o saldo atual. Nunca alteramos saldo localmente.
type BalanceSource interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// userMessager é implementado pelos erros do client REST que trazem texto do backend
type userMessager interface {
	UserMessage() string
}

// Snapshot é a visão do slip para a UI
type Snapshot struct {
	ID            string          `json:"id"`
	FixtureID     int64           `json:"fixture_id"`
	State         State           `json:"state"`
	Selection     Selection       `json:"selection"`
	Stake         string          `json:"stake"`
	Probabilities *Probabilities  `json:"probabilities,omitempty"`
	Quote         Quote           `json:"quote"`
	Balance       decimal.Decimal `json:"balance"`
	LastError     string          `json:"last_error,omitempty"`
	LastErrorKind string          `json:"last_error_kind,omitempty"`
	LastSuccess   string          `json:"last_success,omitempty"`
}

// Receipt descreve um envio aceito
type Receipt struct {
	Request dto.PlaceBetRequest `json:"request"`
	Quote   Quote               `json:"quote"`
	Message string              `json:"message"`
}

// Slip guarda o estado de uma aposta em edição para uma partida.
// Envio é single-flight: enquanto Submitting, novos Submit e edições são recusados.
type Slip struct {
	mu sync.Mutex

	id        string
	fixtureID int64
	placer    BetPlacer
	balances  BalanceSource
	log       *zap.Logger

	state     State
	selection Selection
	stake     string

	probs    Probabilities
	hasProbs bool
	balance  decimal.Decimal

	lastErr     error
	lastSuccess string
}

func NewSlip(fixtureID int64, placer BetPlacer, balances BalanceSource, log *zap.Logger) *Slip {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Slip{
		id:        id,
		fixtureID: fixtureID,
		placer:    placer,
		balances:  balances,
		log:       log.With(zap.String("slip_id", id), zap.Int64("fixture_id", fixtureID)),
		state:     Idle,
		selection: Selection{Type: HomeWin},
	}
}

func (s *Slip) ID() string       { return s.id }
func (s *Slip) FixtureID() int64 { return s.fixtureID }

func (s *Slip) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// edit aplica uma mudança de entrada e passa para Editing
func (s *Slip) edit(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrSlipLocked
	}
	fn()
	s.state = Editing
	s.lastSuccess = ""
	return nil
}

// SetSelection troca a seleção. Placar digitado é mantido só se continuar em SCORE.
func (s *Slip) SetSelection(sel Selection) error {
	return s.edit(func() {
		if sel.Type != ExactScore {
			sel.HomeScore, sel.AwayScore = "", ""
		}
		s.selection = sel
	})
}

func (s *Slip) SetStake(raw string) error {
	return s.edit(func() { s.stake = raw })
}

// UpdateProbabilities troca o trio usado no cálculo. Só deve ser chamado com uma
// previsão resolvida com sucesso; uma falha de busca mantém o trio anterior.
func (s *Slip) UpdateProbabilities(p Probabilities) {
	s.mu.Lock()
	s.probs = p
	s.hasProbs = true
	s.mu.Unlock()
}

// RefreshBalance rebusca o saldo. Em erro o último valor conhecido permanece.
func (s *Slip) RefreshBalance(ctx context.Context) error {
	if s.balances == nil {
		return nil
	}
	bal, err := s.balances.Balance(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.balance = bal
	s.mu.Unlock()
	return nil
}

// Quote é recalculado a cada chamada a partir das entradas atuais
func (s *Slip) Quote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Calculate(s.selection, s.probs, s.stake)
}

func (s *Slip) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.id,
		FixtureID:   s.fixtureID,
		State:       s.state,
		Selection:   s.selection,
		Stake:       s.stake,
		Quote:       Calculate(s.selection, s.probs, s.stake),
		Balance:     s.balance,
		LastSuccess: s.lastSuccess,
	}
	if s.hasProbs {
		p := s.probs
		snap.Probabilities = &p
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
		snap.LastErrorKind = KindOf(s.lastErr).String()
	}
	return snap
}

// Submit valida, envia e aplica a transição de estado.
// Falha de validação ou de envio volta para Editing com as entradas intactas.
// Em falha de envio o Receipt ainda traz o request que foi tentado.
// Sucesso limpa stake e placar, volta para Idle e rebusca o saldo.
func (s *Slip) Submit(ctx context.Context) (Receipt, error) {
	s.mu.Lock()
	if s.state == Submitting {
		s.mu.Unlock()
		return Receipt{}, ErrSubmitInFlight
	}

	ticket, err := Validate(s.stake, s.selection, s.balance)
	if err != nil {
		s.lastErr = err
		s.state = Editing
		s.mu.Unlock()
		return Receipt{}, err
	}

	req := BuildRequest(s.fixtureID, ticket)
	quote := Calculate(s.selection, s.probs, s.stake)
	s.state = Submitting
	s.lastErr = nil
	s.lastSuccess = ""
	s.mu.Unlock()

	start := time.Now()
	resp, err := s.placer.PlaceBet(ctx, req)
	err = submissionError(resp, err)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err
		s.state = Editing
		s.mu.Unlock()
		s.log.Warn("bet submission failed", zap.String("bet_type", req.BetType), zap.Int64("amount", req.Amount), zap.Error(err))
		// o request vai junto para auditoria; Message fica vazio
		return Receipt{Request: req, Quote: quote}, err
	}

	msg := resp.Message
	if msg == "" {
		msg = defaultSuccessMessage
	}
	s.state = Idle
	s.stake = ""
	s.selection.HomeScore, s.selection.AwayScore = "", ""
	s.lastSuccess = msg
	s.mu.Unlock()

	s.log.Info("bet submitted",
		zap.String("bet_type", req.BetType),
		zap.Int64("amount", req.Amount),
		zap.Duration("took", time.Since(start)),
	)

	// saldo nunca é ajustado localmente
	if err := s.RefreshBalance(ctx); err != nil {
		s.log.Warn("balance refresh after bet failed", zap.Error(err))
	}

	return Receipt{Request: req, Quote: quote, Message: msg}, nil
}

func submissionError(resp dto.PlaceBetResponse, err error) error {
	if err != nil {
		msg := defaultFailureMessage
		var um userMessager
		if errors.As(err, &um) && um.UserMessage() != "" {
			msg = um.UserMessage()
		}
		return &SubmissionError{Message: msg, Err: err}
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = defaultRejectMessage
		}
		return &SubmissionError{Message: msg}
	}
	return nil
}

package betslip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/football-betslip/internal/footballapi/dto"
)

type fakePlacer struct {
	mu    sync.Mutex
	calls []dto.PlaceBetRequest
	resp  dto.PlaceBetResponse
	err   error
	gate  chan struct{} // quando não nil, PlaceBet espera ser liberado
	began chan struct{}
}

func (f *fakePlacer) PlaceBet(ctx context.Context, req dto.PlaceBetRequest) (dto.PlaceBetResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.began != nil {
		f.began <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.resp, f.err
}

func (f *fakePlacer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeBalance struct {
	mu    sync.Mutex
	value decimal.Decimal
	calls int
	err   error
}

func (f *fakeBalance) Balance(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.value, f.err
}

type messageErr struct{ msg string }

func (e messageErr) Error() string       { return "http 422: " + e.msg }
func (e messageErr) UserMessage() string { return e.msg }

func newTestSlip(t *testing.T, placer *fakePlacer, bal *fakeBalance) *Slip {
	t.Helper()
	s := NewSlip(99, placer, bal, nil)
	require.NoError(t, s.RefreshBalance(context.Background()))
	s.UpdateProbabilities(Probabilities{Home: 40, Draw: 30, Away: 30})
	return s
}

func TestSlipStartsIdleAndEditsMoveToEditing(t *testing.T) {
	s := newTestSlip(t, &fakePlacer{}, &fakeBalance{value: decimal.NewFromInt(1_000_000)})
	assert.Equal(t, Idle, s.State())

	require.NoError(t, s.SetStake("50000"))
	assert.Equal(t, Editing, s.State())

	q := s.Quote()
	assert.True(t, dec("2.5").Equal(q.Multiplier))
	assert.True(t, dec("125000").Equal(q.PotentialPayout))

	// payout acompanha a troca de seleção sem estado em cache
	require.NoError(t, s.SetSelection(Outcome(Draw)))
	assert.True(t, dec("166500").Equal(s.Quote().PotentialPayout))
}

func TestSlipSubmitSuccessResetsAndRefreshesBalance(t *testing.T) {
	placer := &fakePlacer{resp: dto.PlaceBetResponse{Success: true, Message: "ok!"}}
	bal := &fakeBalance{value: decimal.NewFromInt(1_000_000)}
	s := newTestSlip(t, placer, bal)

	require.NoError(t, s.SetSelection(Score(2, 1)))
	require.NoError(t, s.SetStake("100000"))

	rec, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ok!", rec.Message)
	assert.True(t, dec("500000").Equal(rec.Quote.PotentialPayout))
	require.NotNil(t, rec.Request.PredictedScore)
	assert.Equal(t, dto.Score{Home: 2, Away: 1}, *rec.Request.PredictedScore)

	snap := s.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Stake)
	assert.Empty(t, snap.Selection.HomeScore)
	assert.Equal(t, "ok!", snap.LastSuccess)
	assert.Equal(t, 2, bal.calls, "balance must be re-fetched after the bet")
}

func TestSlipScenarioEBackendRejectKeepsInputs(t *testing.T) {
	placer := &fakePlacer{resp: dto.PlaceBetResponse{Success: false, Message: "market closed"}}
	s := newTestSlip(t, placer, &fakeBalance{value: decimal.NewFromInt(1_000_000)})

	require.NoError(t, s.SetSelection(Outcome(AwayWin)))
	require.NoError(t, s.SetStake("30000"))

	rec, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, "market closed", err.Error())
	assert.Equal(t, "LOSS", rec.Request.BetType)
	assert.Equal(t, int64(30000), rec.Request.Amount)
	assert.Empty(t, rec.Message)

	snap := s.Snapshot()
	assert.Equal(t, Editing, snap.State)
	assert.Equal(t, "30000", snap.Stake)
	assert.Equal(t, AwayWin, snap.Selection.Type)
	assert.Equal(t, "market closed", snap.LastError)
	assert.Equal(t, "submission_failed", snap.LastErrorKind)
}

func TestSlipTransportErrorUsesBackendMessageWhenPresent(t *testing.T) {
	placer := &fakePlacer{err: messageErr{msg: "fixture already started"}}
	s := newTestSlip(t, placer, &fakeBalance{value: decimal.NewFromInt(1_000_000)})
	require.NoError(t, s.SetStake("30000"))

	_, err := s.Submit(context.Background())
	assert.EqualError(t, err, "fixture already started")

	placer.err = errors.New("dial tcp: connection refused")
	_, err = s.Submit(context.Background())
	assert.EqualError(t, err, defaultFailureMessage)
	assert.Equal(t, Editing, s.State())
	assert.Equal(t, "30000", s.Snapshot().Stake)
}

func TestSlipValidationFailureDoesNotCallBackend(t *testing.T) {
	placer := &fakePlacer{resp: dto.PlaceBetResponse{Success: true}}
	s := newTestSlip(t, placer, &fakeBalance{value: decimal.NewFromInt(10_000)})

	require.NoError(t, s.SetStake("5000"))
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrOutOfBounds)

	require.NoError(t, s.SetStake("20000"))
	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Equal(t, 0, placer.count())
	assert.Equal(t, Editing, s.State())
}

func TestSlipSingleFlight(t *testing.T) {
	placer := &fakePlacer{
		resp:  dto.PlaceBetResponse{Success: true},
		gate:  make(chan struct{}),
		began: make(chan struct{}, 1),
	}
	s := newTestSlip(t, placer, &fakeBalance{value: decimal.NewFromInt(1_000_000)})
	require.NoError(t, s.SetStake("50000"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	select {
	case <-placer.began:
	case <-time.After(2 * time.Second):
		t.Fatal("first submit never reached the backend")
	}

	assert.Equal(t, Submitting, s.State())
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, s.SetStake("60000"), ErrSlipLocked)

	// previsão nova pode chegar durante o envio
	s.UpdateProbabilities(Probabilities{Home: 50, Draw: 25, Away: 25})

	close(placer.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, placer.count())
	assert.Equal(t, Idle, s.State())
}

func TestSlipBalanceRefreshFailureKeepsLastValue(t *testing.T) {
	bal := &fakeBalance{value: decimal.NewFromInt(200_000)}
	s := newTestSlip(t, &fakePlacer{}, bal)

	bal.err = errors.New("timeout")
	assert.Error(t, s.RefreshBalance(context.Background()))
	assert.True(t, decimal.NewFromInt(200_000).Equal(s.Snapshot().Balance))
}

func TestSlipWithoutProbabilitiesQuotesZeroForOutcomes(t *testing.T) {
	s := NewSlip(1, &fakePlacer{}, nil, nil)
	require.NoError(t, s.SetStake("50000"))

	assert.True(t, s.Quote().PotentialPayout.IsZero())
	assert.Nil(t, s.Snapshot().Probabilities)
}

func TestSlipSwitchingAwayFromScoreDropsTypedScore(t *testing.T) {
	s := newTestSlip(t, &fakePlacer{}, &fakeBalance{value: decimal.NewFromInt(1_000_000)})

	require.NoError(t, s.SetSelection(Score(3, 1)))
	require.NoError(t, s.SetSelection(Outcome(Draw)))

	sel := s.Snapshot().Selection
	assert.Equal(t, Draw, sel.Type)
	assert.Empty(t, sel.HomeScore)
	assert.Empty(t, sel.AwayScore)
}

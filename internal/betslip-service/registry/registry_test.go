package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/football-betslip/internal/betslip"
	"github.com/radieske/football-betslip/internal/footballapi/dto"
	"github.com/radieske/football-betslip/pkg/contracts/events"
)

type fakeBackend struct {
	mu      sync.Mutex
	balance decimal.Decimal
	balErr  error
	calls   int
}

func (f *fakeBackend) PlaceBet(ctx context.Context, req dto.PlaceBetRequest) (dto.PlaceBetResponse, error) {
	return dto.PlaceBetResponse{Success: true}, nil
}

func (f *fakeBackend) Balance(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.balance, f.balErr
}

func newTestRegistry() (*Registry, map[string]*fakeBackend) {
	backends := map[string]*fakeBackend{}
	var mu sync.Mutex
	r := New(func(sessionID string) Backend {
		mu.Lock()
		defer mu.Unlock()
		b, ok := backends[sessionID]
		if !ok {
			b = &fakeBackend{balance: decimal.NewFromInt(500_000)}
			backends[sessionID] = b
		}
		return b
	}, nil)
	return r, backends
}

func TestGetCreatesOncePerSessionAndFixture(t *testing.T) {
	r, backends := newTestRegistry()
	ctx := context.Background()

	a := r.Get(ctx, "s1", 10)
	assert.Same(t, a, r.Get(ctx, "s1", 10))
	assert.NotSame(t, a, r.Get(ctx, "s1", 11))
	assert.NotSame(t, a, r.Get(ctx, "s2", 10))
	assert.Equal(t, 3, r.Len())

	assert.True(t, decimal.NewFromInt(500_000).Equal(a.Snapshot().Balance))
	assert.Equal(t, 2, backends["s1"].calls, "one balance fetch per created slip")
}

func TestGetSurvivesBalanceFailure(t *testing.T) {
	r := New(func(string) Backend { return &fakeBackend{balErr: errors.New("down")} }, nil)
	s := r.Get(context.Background(), "s1", 10)
	require.NotNil(t, s)
	assert.True(t, s.Snapshot().Balance.IsZero())
}

func TestUpdateProbabilitiesReachesEveryFixtureSlip(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()
	a := r.Get(ctx, "s1", 10)
	b := r.Get(ctx, "s2", 10)
	other := r.Get(ctx, "s1", 11)

	r.UpdateProbabilities(10, betslip.Probabilities{Home: 50, Draw: 25, Away: 25})

	require.NotNil(t, a.Snapshot().Probabilities)
	require.NotNil(t, b.Snapshot().Probabilities)
	assert.Nil(t, other.Snapshot().Probabilities)
}

func TestRefreshBalanceAndDropSession(t *testing.T) {
	r, backends := newTestRegistry()
	ctx := context.Background()
	s := r.Get(ctx, "s1", 10)
	r.Get(ctx, "s2", 10)

	backends["s1"].balance = decimal.NewFromInt(900_000)
	r.RefreshBalance(ctx, "s1")
	assert.True(t, decimal.NewFromInt(900_000).Equal(s.Snapshot().Balance))

	r.DropSession("s1")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, s, r.Get(ctx, "s1", 10))
}

func TestSweepEvictsIdleSlips(t *testing.T) {
	r, _ := newTestRegistry()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	r.Get(ctx, "s1", 10)
	now = now.Add(20 * time.Minute)
	r.Get(ctx, "s2", 10)
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, r.Sweep(15*time.Minute))
	assert.Equal(t, 1, r.Len())
}

func TestApplyPredictionReplacesTriple(t *testing.T) {
	r, _ := newTestRegistry()
	s := r.Get(context.Background(), "s1", 10)
	s.UpdateProbabilities(betslip.Probabilities{Home: 40, Draw: 30, Away: 30})

	r.ApplyPrediction(events.PredictionUpdate{FixtureID: 10, WinProbability: events.WinProbability{Home: 50, Draw: 25, Away: 25}})

	p := s.Snapshot().Probabilities
	require.NotNil(t, p)
	assert.Equal(t, 50.0, p.Home)
	require.NoError(t, s.SetStake("50000"))
	assert.True(t, decimal.NewFromInt(100_000).Equal(s.Quote().PotentialPayout))
}

// Package prediction resolve a previsão de vitória de uma partida com cache
// no Redis. Uma busca que falha nunca apaga a última previsão boa.
package prediction

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/betslip"
	"github.com/radieske/football-betslip/internal/footballapi/dto"
	"github.com/radieske/football-betslip/internal/shared/metrics"
	"github.com/radieske/football-betslip/pkg/contracts/events"
)

// Source indica de onde veio a previsão devolvida
type Source string

const (
	SourceCache Source = "cache"
	SourceAPI   Source = "api"
	SourceStale Source = "stale"
)

type Fetcher interface {
	Prediction(ctx context.Context, fixtureID int64) (dto.Prediction, error)
}

type Store interface {
	Get(ctx context.Context, fixtureID int64) (Entry, bool, error)
	Set(ctx context.Context, e Entry) error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type Result struct {
	Entry
	Source Source `json:"source"`
}

// Probabilities converte o trio do backend para o tipo do calculador
func (e Entry) Probabilities() betslip.Probabilities {
	wp := e.Prediction.WinProbability
	return betslip.Probabilities{Home: wp.Home, Draw: wp.Draw, Away: wp.Away}
}

type Service struct {
	store   Store
	pub     Publisher
	channel string
	ttl     time.Duration
	m       *metrics.Betslip
	log     *zap.Logger
	now     func() time.Time
}

// NewService: pub e m podem ser nil
func NewService(store Store, pub Publisher, channel string, ttl time.Duration, m *metrics.Betslip, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, pub: pub, channel: channel, ttl: ttl, m: m, log: log, now: time.Now}
}

// Latest devolve a previsão do cache se ainda fresca; senão busca no backend.
// Se a busca falhar e houver valor em cache, ele é devolvido como stale.
func (s *Service) Latest(ctx context.Context, f Fetcher, fixtureID int64) (Result, error) {
	cached, hit, err := s.store.Get(ctx, fixtureID)
	if err != nil {
		// cache fora não impede a busca
		s.log.Warn("prediction cache read failed", zap.Int64("fixture_id", fixtureID), zap.Error(err))
		hit = false
	}
	if hit && s.now().Sub(cached.FetchedAt) < s.ttl {
		s.count(SourceCache)
		return Result{Entry: cached, Source: SourceCache}, nil
	}

	p, err := f.Prediction(ctx, fixtureID)
	if err != nil {
		if hit {
			s.log.Warn("prediction fetch failed, serving stale value",
				zap.Int64("fixture_id", fixtureID),
				zap.Time("fetched_at", cached.FetchedAt),
				zap.Error(err),
			)
			s.count(SourceStale)
			return Result{Entry: cached, Source: SourceStale}, nil
		}
		return Result{}, err
	}

	e := Entry{FixtureID: fixtureID, Prediction: p, FetchedAt: s.now().UTC()}
	if err := s.store.Set(ctx, e); err != nil {
		s.log.Warn("prediction cache write failed", zap.Int64("fixture_id", fixtureID), zap.Error(err))
	}
	s.publish(ctx, e)
	s.count(SourceAPI)
	return Result{Entry: e, Source: SourceAPI}, nil
}

func (s *Service) publish(ctx context.Context, e Entry) {
	if s.pub == nil || s.channel == "" {
		return
	}
	wp := e.Prediction.WinProbability
	b, err := json.Marshal(events.PredictionUpdate{
		FixtureID:      e.FixtureID,
		WinProbability: events.WinProbability{Home: wp.Home, Draw: wp.Draw, Away: wp.Away},
		FetchedAt:      e.FetchedAt,
	})
	if err != nil {
		return
	}
	if err := s.pub.Publish(ctx, s.channel, b); err != nil {
		s.log.Warn("prediction publish failed", zap.Int64("fixture_id", e.FixtureID), zap.Error(err))
	}
}

func (s *Service) count(src Source) {
	if s.m != nil {
		s.m.PredictionFetches.WithLabelValues(string(src)).Inc()
	}
}

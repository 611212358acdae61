package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/football-betslip/internal/footballapi/dto"
)

// Entry é a última previsão boa de uma partida
type Entry struct {
	FixtureID  int64          `json:"fixture_id"`
	Prediction dto.Prediction `json:"prediction"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

// RedisCache guarda a última previsão por partida.
// Retention é só limpeza de chaves antigas; frescor é decidido pelo Service.
type RedisCache struct {
	Client    *redis.Client
	Retention time.Duration
}

func NewRedisCache(c *redis.Client, retention time.Duration) *RedisCache {
	return &RedisCache{Client: c, Retention: retention}
}

func key(fixtureID int64) string { return "prediction:last:" + strconv.FormatInt(fixtureID, 10) }

func (r *RedisCache) Get(ctx context.Context, fixtureID int64) (Entry, bool, error) {
	b, err := r.Client.Get(ctx, key(fixtureID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (r *RedisCache) Set(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(e.FixtureID), b, r.Retention).Err()
}

// RedisPublisher empurra atualizações para o canal lido pelo hub WS
type RedisPublisher struct {
	r *redis.Client
}

func NewRedisPublisher(r *redis.Client) *RedisPublisher {
	return &RedisPublisher{r: r}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.r.Publish(ctx, channel, payload).Err()
}

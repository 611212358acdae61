package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis guarda o token de uma sessão do BFF. Cada request HTTP monta o seu
// Store com o session id recebido.
type Redis struct {
	rdb       *redis.Client
	sessionID string
}

func NewRedis(rdb *redis.Client, sessionID string) *Redis {
	return &Redis{rdb: rdb, sessionID: sessionID}
}

func key(sessionID string) string { return "session:" + sessionID + ":token" }

func (r *Redis) Token(ctx context.Context) (string, error) {
	if r.sessionID == "" {
		return "", ErrNoSession
	}
	tok, err := r.rdb.Get(ctx, key(r.sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return tok, nil
}

// SetToken com ttl <= 0 grava sem expiração
func (r *Redis) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.rdb.Set(ctx, key(r.sessionID), token, ttl).Err()
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, key(r.sessionID)).Err()
}

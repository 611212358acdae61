package ws

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartRedisSubscriber escuta o canal de previsões e repassa ao hub.
// Encerra quando ctx termina.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				if err := hub.handleRaw([]byte(msg.Payload)); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.String("channel", channel), zap.Error(err))
				}
			}
		}
	}()
}

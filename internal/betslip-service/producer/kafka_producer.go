package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/radieske/football-betslip/internal/shared/kafka"
	"github.com/radieske/football-betslip/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer kafka.MessageWriter
	Topic  string
	now    func() time.Time
}

func NewKafkaPublisher(w kafka.MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic, now: time.Now}
}

// PublishBetSubmitted usa fixture_id como chave para manter a ordem por partida
func (p *KafkaPublisher) PublishBetSubmitted(ctx context.Context, e events.BetSubmitted) error {
	if e.Ts.IsZero() {
		e.Ts = p.now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Writer, strconv.FormatInt(e.FixtureID, 10), b)
}

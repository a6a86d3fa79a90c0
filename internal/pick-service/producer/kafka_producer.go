package producer

import (
	"context"
	"time"

	"github.com/radieske/pick-control/internal/shared/kafka"
	"github.com/radieske/pick-control/pkg/contracts/events"
)

// KafkaPublisher publica PickEvent com o dono como chave, mantendo a ordem por dono
type KafkaPublisher struct {
	Writer *kafka.Writer
	now    func() time.Time
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, now: time.Now}
}

func (p *KafkaPublisher) PublishPickEvent(ctx context.Context, e events.PickEvent) error {
	if e.Ts.IsZero() {
		e.Ts = p.now().UTC()
	}
	return kafka.WriteJSON(ctx, p.Writer, e.OwnerID, e)
}

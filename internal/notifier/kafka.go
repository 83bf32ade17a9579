package notifier

import (
	"context"
	"encoding/json"
	"time"

	skafka "github.com/mooneden/newbet/internal/shared/kafka"
	"github.com/mooneden/newbet/pkg/contracts/events"
)

// KafkaNotifier publica eventos de aposta. Fire-and-forget: falha de
// publicação nunca desfaz a aposta nem a liquidação.
type KafkaNotifier struct {
	placed  *skafka.Writer
	settled *skafka.Writer
}

func NewKafkaNotifier(placed, settled *skafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{placed: placed, settled: settled}
}

func (n *KafkaNotifier) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return skafka.WriteJSON(ctx, n.placed, e.BetID, b)
}

func (n *KafkaNotifier) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, _ := json.Marshal(e)
	return skafka.WriteJSON(ctx, n.settled, e.BetID, b)
}

func (n *KafkaNotifier) Close() error {
	if err := n.placed.Close(); err != nil {
		_ = n.settled.Close()
		return err
	}
	return n.settled.Close()
}

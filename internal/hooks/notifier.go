package hooks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/omnistore/fulfillment-service/internal/pkg/broker"
)

// KafkaNotifier publishes templated notification payloads to the outbound
// notifications topic. Delivery mechanics (SMS, push) live downstream.
type KafkaNotifier struct {
	producer *broker.Producer
}

func NewKafkaNotifier(producer *broker.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

type notificationMessage struct {
	Destination string         `json:"destination"`
	Template    string         `json:"template"`
	Payload     map[string]any `json:"payload"`
	QueuedAt    time.Time      `json:"queued_at"`
}

func (n *KafkaNotifier) Send(ctx context.Context, destination, template string, payload map[string]any) error {
	msg, err := json.Marshal(notificationMessage{
		Destination: destination,
		Template:    template,
		Payload:     payload,
		QueuedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, []byte(destination), msg)
}

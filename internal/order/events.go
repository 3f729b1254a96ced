package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/omnistore/fulfillment-service/internal/model"
)

const (
	EventOrderCreated      = "OrderCreated"
	EventOrderTransitioned = "OrderTransitioned"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID         string                `json:"order_id"`
	Source          string                `json:"source"`
	FulfillmentType model.FulfillmentType `json:"fulfillment_type"`
	Status          model.OrderStatus     `json:"status"`
	TotalAmount     float64               `json:"total_amount"`
}

type TransitionedPayload struct {
	OrderID         string                `json:"order_id"`
	FulfillmentType model.FulfillmentType `json:"fulfillment_type"`
	From            model.OrderStatus     `json:"from"`
	To              model.OrderStatus     `json:"to"`
	Reason          string                `json:"reason,omitempty"`
}

// NewEnvelope wraps a payload into a versioned, marshalled envelope.
func NewEnvelope(eventType, producer, correlationID string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	})
}

// Partition key = order_id so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/order"
	"github.com/omnistore/fulfillment-service/internal/order/dto"
	"github.com/omnistore/fulfillment-service/internal/pkg/broker"
	"github.com/omnistore/fulfillment-service/internal/pkg/cache"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// PosListener consumes point-of-sale order events and drives them through
// the regular create path, so store sales reserve stock the same way
// delivery orders do.
type PosListener struct {
	consumer *broker.KafkaConsumer
	uc       order.UseCase
	cache    *cache.RedisClient
	logger   logger.ZapLogger
}

func NewPosListener(consumer *broker.KafkaConsumer, uc order.UseCase, c *cache.RedisClient, log logger.ZapLogger) *PosListener {
	return &PosListener{
		consumer: consumer,
		uc:       uc,
		cache:    c,
		logger:   log,
	}
}

func (l *PosListener) Start(ctx context.Context) {
	l.logger.Info("Starting POS order listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping POS order listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type posSaleEvent struct {
	EventID    string        `json:"event_id"`
	EventType  string        `json:"event_type"`
	CustomerID string        `json:"customer_id"`
	Items      []posSaleItem `json:"items"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type posSaleItem struct {
	VariantID string  `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func (l *PosListener) processMessage(ctx context.Context, value []byte) {
	var event posSaleEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal POS event", zap.Error(err))
		return
	}
	if event.EventType != "StoreSaleRecorded" {
		return
	}

	if l.cache != nil && event.EventID != "" {
		key := fmt.Sprintf(cache.KeyPosDedup, event.EventID)
		fresh, err := l.cache.SetOnce(ctx, key, cache.TTLDedup)
		if err != nil {
			l.logger.Warn("POS dedup check failed, processing anyway", zap.Error(err))
		} else if !fresh {
			return
		}
	}

	input := &dto.CreateOrderInput{
		Source:          "store",
		FulfillmentType: model.FulfillmentStore,
		CustomerID:      event.CustomerID,
	}
	for _, it := range event.Items {
		input.Items = append(input.Items, dto.CreateOrderItemInput{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	o, err := l.uc.Create(ctx, input)
	if err != nil {
		l.logger.Error("failed to record store sale",
			zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	l.logger.Info("store sale recorded",
		zap.String("order_id", o.ID), zap.String("status", string(o.Status)))
}

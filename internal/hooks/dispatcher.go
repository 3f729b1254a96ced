package hooks

import (
	"context"
	"fmt"

	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/pkg/cache"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	HookDeliveryNotification     = "delivery_notification"
	HookCancellationNotification = "cancellation_notification"
	HookProgressNotification     = "progress_notification"
	HookFeedbackTicket           = "feedback_ticket"
	HookReturnTicket             = "return_ticket"
)

// Outcome records one hook attempt. Hooks are advisory: the transition is the
// source of truth and an Outcome never influences the transition result.
type Outcome struct {
	Hook string `json:"hook"`
	OK   bool   `json:"ok"`
	Err  string `json:"err,omitempty"`
}

type Notifier interface {
	Send(ctx context.Context, destination, template string, payload map[string]any) error
}

type Ticketer interface {
	CreateTicket(ctx context.Context, ticketType, subject, orderID string) (string, error)
}

type Dispatcher struct {
	notifier Notifier
	ticketer Ticketer
	cache    *cache.RedisClient
	logger   logger.ZapLogger
}

// cache may be nil; without it the at-most-once guard is skipped.
func NewDispatcher(notifier Notifier, ticketer Ticketer, c *cache.RedisClient, log logger.ZapLogger) *Dispatcher {
	return &Dispatcher{notifier: notifier, ticketer: ticketer, cache: c, logger: log}
}

// Dispatch runs the hooks mapped to the new status. It must be called only
// after the status write is durable. Every hook failure is logged and folded
// into the returned outcomes, never re-raised.
func (d *Dispatcher) Dispatch(ctx context.Context, o *model.Order, from, to model.OrderStatus) []Outcome {
	if d.cache != nil {
		key := fmt.Sprintf(cache.KeyHookDedup, o.ID, string(to))
		fresh, err := d.cache.SetOnce(ctx, key, cache.TTLDedup)
		if err != nil {
			d.logger.Warn("hook dedup check failed, dispatching anyway",
				zap.String("order_id", o.ID), zap.Error(err))
		} else if !fresh {
			d.logger.Info("hooks already dispatched for transition",
				zap.String("order_id", o.ID), zap.String("to", string(to)))
			return nil
		}
	}

	var outcomes []Outcome
	switch to {
	case model.StatusDelivered:
		outcomes = append(outcomes, d.ticket(ctx, HookFeedbackTicket, "feedback",
			fmt.Sprintf("Feedback request for order %s", o.ID), o.ID))
		outcomes = append(outcomes, d.notify(ctx, HookDeliveryNotification, o, "order_delivered", from, to))
	case model.StatusCancelled:
		outcomes = append(outcomes, d.notify(ctx, HookCancellationNotification, o, "order_cancelled", from, to))
	case model.StatusReturnInitiated:
		outcomes = append(outcomes, d.ticket(ctx, HookReturnTicket, "return",
			fmt.Sprintf("Return requested for order %s", o.ID), o.ID))
	case model.StatusOutForDelivery, model.StatusHandoverToCourier:
		outcomes = append(outcomes, d.notify(ctx, HookProgressNotification, o, "order_progress", from, to))
	}
	return outcomes
}

func (d *Dispatcher) notify(ctx context.Context, hook string, o *model.Order, template string, from, to model.OrderStatus) Outcome {
	dest := ""
	if o.CustomerID != nil {
		dest = *o.CustomerID
	}
	err := d.notifier.Send(ctx, dest, template, map[string]any{
		"order_id": o.ID,
		"from":     string(from),
		"to":       string(to),
	})
	if err != nil {
		d.logger.Error("notification hook failed",
			zap.String("hook", hook), zap.String("order_id", o.ID), zap.Error(err))
		return Outcome{Hook: hook, Err: err.Error()}
	}
	return Outcome{Hook: hook, OK: true}
}

func (d *Dispatcher) ticket(ctx context.Context, hook, ticketType, subject, orderID string) Outcome {
	if _, err := d.ticketer.CreateTicket(ctx, ticketType, subject, orderID); err != nil {
		d.logger.Error("ticket hook failed",
			zap.String("hook", hook), zap.String("order_id", orderID), zap.Error(err))
		return Outcome{Hook: hook, Err: err.Error()}
	}
	return Outcome{Hook: hook, OK: true}
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omnistore/fulfillment-service/internal/exchange"
	"github.com/omnistore/fulfillment-service/internal/hooks"
	"github.com/omnistore/fulfillment-service/internal/inventory"
	invdto "github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/order"
	"github.com/omnistore/fulfillment-service/internal/order/dto"
	"github.com/omnistore/fulfillment-service/internal/pkg/cache"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// EventPublisher is the slice of the broker the usecase needs. The state
// machine itself stays I/O-free; subscribers own any further wiring.
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type orderUseCase struct {
	repo       order.Repository
	stock      inventory.UseCase
	dispatcher *hooks.Dispatcher
	linker     exchange.UseCase
	events     EventPublisher
	cache      *cache.RedisClient
	logger     logger.ZapLogger
	producer   string
}

func NewOrderUseCase(repo order.Repository, stock inventory.UseCase, dispatcher *hooks.Dispatcher, linker exchange.UseCase, events EventPublisher, c *cache.RedisClient, log logger.ZapLogger, producerName string) order.UseCase {
	return &orderUseCase{
		repo:       repo,
		stock:      stock,
		dispatcher: dispatcher,
		linker:     linker,
		events:     events,
		cache:      c,
		logger:     log,
		producer:   producerName,
	}
}

func (uc *orderUseCase) Create(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	switch input.FulfillmentType {
	case model.FulfillmentInsideChannel, model.FulfillmentOutsideChannel, model.FulfillmentStore:
	default:
		return nil, &model.ValidationError{Field: "fulfillment_type", Reason: fmt.Sprintf("unknown type %q", input.FulfillmentType)}
	}
	if len(input.Items) == 0 {
		return nil, &model.ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	isChild := input.ParentOrderID != ""
	if isChild {
		parent, err := uc.repo.GetByID(ctx, input.ParentOrderID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, &model.NotFoundError{Entity: "order", ID: input.ParentOrderID}
		}
		// One level of nesting: a child never becomes a parent.
		if parent.ParentOrderID != nil && *parent.ParentOrderID != "" {
			return nil, &model.ValidationError{Field: "parent_order_id", Reason: "parent order is itself a child order"}
		}
	}

	var deductions []invdto.StockItem
	total := 0.0
	returned, added := 0, 0
	for _, it := range input.Items {
		if it.Quantity == 0 {
			return nil, &model.ValidationError{Field: "items", Reason: "quantity must be non-zero"}
		}
		if it.Quantity < 0 && !isChild {
			return nil, &model.ValidationError{Field: "items", Reason: "negative quantities are only valid on exchange/refund orders"}
		}
		total += float64(it.Quantity) * it.UnitPrice
		if it.Quantity > 0 {
			added += it.Quantity
			deductions = append(deductions, invdto.StockItem{VariantID: it.VariantID, Quantity: it.Quantity})
		} else {
			returned += -it.Quantity
		}
	}

	// The order ID exists before the reservation so the movement audit rows
	// carry it even when the insert below never happens.
	orderID := uuid.New().String()

	// All-or-nothing reservation before the order row exists. A crash
	// between the two writes is a tolerated, reconciled failure mode.
	switch {
	case len(deductions) == 1:
		if _, err := uc.stock.DeductStock(ctx, deductions, orderID); err != nil {
			return nil, err
		}
	case len(deductions) > 1:
		if err := uc.stock.DeductStockBatch(ctx, deductions, orderID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	o := &model.Order{
		BaseModel:       model.BaseModel{ID: orderID, CreatedAt: now, UpdatedAt: now},
		Source:          input.Source,
		FulfillmentType: input.FulfillmentType,
		Status:          order.InitialStatus(input.Source, input.FulfillmentType),
		TotalAmount:     total,
	}
	if isChild {
		parentID := input.ParentOrderID
		o.ParentOrderID = &parentID
	}
	if input.CustomerID != "" {
		customerID := input.CustomerID
		o.CustomerID = &customerID
	}
	for _, it := range input.Items {
		o.Items = append(o.Items, model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		uc.logger.Error("order insert failed after stock was deducted, needs reconciliation",
			zap.String("order_id", o.ID), zap.Error(err))
		return nil, err
	}

	uc.cacheStatus(ctx, o)
	uc.publish(ctx, o.ID, order.EventOrderCreated, order.OrderCreatedPayload{
		OrderID:         o.ID,
		Source:          o.Source,
		FulfillmentType: o.FulfillmentType,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
	})

	// A child order with returned lines is a refund or exchange; note the
	// link on both sides. The writes are advisory and never fail the create.
	if isChild && returned > 0 && uc.linker != nil {
		exchangeType := exchange.TypeRefund
		if added > 0 {
			exchangeType = exchange.TypeExchange
		}
		uc.linker.LogExchangeLink(ctx, input.ParentOrderID, o.ID, exchangeType)
	}
	return o, nil
}

func (uc *orderUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, &model.NotFoundError{Entity: "order", ID: id}
	}
	items, err := uc.repo.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// Transition validates, persists the new status, applies stock effects, then
// fires advisory hooks. Validation happens before any mutation; the status
// write and the stock calls are separate round trips by design of the backing
// store contract.
func (uc *orderUseCase) Transition(ctx context.Context, input *dto.TransitionInput) (*dto.TransitionResult, error) {
	o, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, &model.NotFoundError{Entity: "order", ID: input.OrderID}
	}

	if err := order.ValidateTransition(o, input.NewStatus, input.Update); err != nil {
		return nil, err
	}

	from := o.Status
	applyUpdate(o, input.Update)
	o.Status = input.NewStatus
	o.UpdatedAt = time.Now()

	if err := uc.repo.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}

	result := &dto.TransitionResult{
		Order:       o,
		From:        from,
		To:          o.Status,
		AllowedNext: order.AllowedNextStatuses(o.Status, o.FulfillmentType),
	}

	if err := uc.applyStockEffect(ctx, o, from, input.Update.Reason); err != nil {
		// The status write already committed; the caller still observes the
		// stock outcome.
		return result, err
	}

	uc.cacheStatus(ctx, o)
	uc.publish(ctx, o.ID, order.EventOrderTransitioned, order.TransitionedPayload{
		OrderID:         o.ID,
		FulfillmentType: o.FulfillmentType,
		From:            from,
		To:              o.Status,
		Reason:          input.Update.Reason,
	})

	result.HookOutcomes = uc.dispatcher.Dispatch(ctx, o, from, o.Status)
	return result, nil
}

func (uc *orderUseCase) applyStockEffect(ctx context.Context, o *model.Order, from model.OrderStatus, reason string) error {
	switch o.Status {
	case model.StatusCancelled, model.StatusRejected:
		if reason == "" {
			reason = "order " + string(o.Status)
		}
		return uc.stock.RestoreStockForOrder(ctx, o.ID, reason)
	case model.StatusReturned:
		if reason == "" {
			reason = "order returned"
		}
		return uc.stock.RestoreStockForOrder(ctx, o.ID, reason)
	case model.StatusPacked:
		// Packing consumes the reservation. Assigned can fall back to
		// packed, that path must not confirm twice.
		if from == model.StatusProcessing {
			return uc.stock.ConfirmStockDeduction(ctx, o.ID)
		}
	}
	return nil
}

func applyUpdate(o *model.Order, upd dto.TransitionUpdate) {
	if upd.AssignedRiderID != "" {
		v := upd.AssignedRiderID
		o.AssignedRiderID = &v
	}
	if upd.CourierName != "" {
		v := upd.CourierName
		o.CourierName = &v
	}
	if upd.TrackingNumber != "" {
		v := upd.TrackingNumber
		o.TrackingNumber = &v
	}
	if upd.Reason != "" {
		v := upd.Reason
		o.CancelReason = &v
	}
}

func (uc *orderUseCase) cacheStatus(ctx context.Context, o *model.Order) {
	if uc.cache == nil {
		return
	}
	key := fmt.Sprintf(cache.KeyOrderStatus, o.ID)
	if err := uc.cache.Set(ctx, key, string(o.Status), cache.TTLStatusCache); err != nil {
		uc.logger.Warn("failed to cache order status", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (uc *orderUseCase) publish(ctx context.Context, orderID, eventType string, payload any) {
	if uc.events == nil {
		return
	}
	ev, err := order.NewEnvelope(eventType, uc.producer, orderID, payload)
	if err != nil {
		uc.logger.Error("failed to build event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := uc.events.Publish(ctx, order.PartitionKey(orderID), ev); err != nil {
		uc.logger.Error("failed to publish event",
			zap.String("event_type", eventType), zap.String("order_id", orderID), zap.Error(err))
	}
}

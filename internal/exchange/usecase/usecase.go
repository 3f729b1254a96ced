package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omnistore/fulfillment-service/internal/exchange"
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/order"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type exchangeLinker struct {
	orders order.Repository
	logger logger.ZapLogger
}

func NewExchangeLinker(orders order.Repository, log logger.ZapLogger) exchange.UseCase {
	return &exchangeLinker{orders: orders, logger: log}
}

func (uc *exchangeLinker) GetRelatedOrders(ctx context.Context, orderID string) (*exchange.RelatedOrders, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, &model.NotFoundError{Entity: "order", ID: orderID}
	}

	out := &exchange.RelatedOrders{Order: o}

	if o.ParentOrderID != nil && *o.ParentOrderID != "" {
		parent, err := uc.orders.GetByID(ctx, *o.ParentOrderID)
		if err != nil {
			return nil, err
		}
		out.Parent = parent
	}

	children, err := uc.orders.ListChildren(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	for i := range children {
		child := &children[i]
		items, err := uc.orders.GetItems(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		child.Items = items

		summary := exchange.ChildSummary{Order: child}
		for _, it := range items {
			if it.Quantity < 0 {
				summary.ReturnedItems += -it.Quantity
				summary.ReturnAmount += float64(-it.Quantity) * it.UnitPrice
			} else {
				summary.NewItems += it.Quantity
				summary.NewAmount += float64(it.Quantity) * it.UnitPrice
			}
		}
		switch {
		case summary.ReturnedItems > 0 && summary.NewItems == 0:
			summary.ExchangeType = exchange.TypeRefund
		case summary.ReturnedItems > 0 && summary.NewItems > 0:
			summary.ExchangeType = exchange.TypeExchange
		}

		out.Children = append(out.Children, summary)
		out.ReturnedItemsCount += summary.ReturnedItems
		out.NewItemsCount += summary.NewItems
		out.ReturnAmount += summary.ReturnAmount
		out.NewAmount += summary.NewAmount
	}

	if len(out.Children) > 0 {
		parentItems, err := uc.orders.GetItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		parentTotal := 0
		for _, it := range parentItems {
			if it.Quantity > 0 {
				parentTotal += it.Quantity
			}
		}
		out.IsFullReturn = out.ReturnedItemsCount >= parentTotal
		out.IsPartialReturn = out.ReturnedItemsCount > 0 && out.ReturnedItemsCount < parentTotal
		out.HasNewItems = out.NewItemsCount > 0
	}

	return out, nil
}

// LogExchangeLink writes one linked note on each side of the relation. The
// two writes are independent on purpose.
func (uc *exchangeLinker) LogExchangeLink(ctx context.Context, parentID, childID string, exchangeType exchange.ExchangeType) *exchange.LinkResult {
	now := time.Now()
	res := &exchange.LinkResult{}

	parentNote := &model.OrderNote{
		ID:        uuid.New().String(),
		OrderID:   parentID,
		Note:      fmt.Sprintf("%s order %s created from this order", exchangeType, childID),
		CreatedAt: now,
	}
	if err := uc.orders.AddNote(ctx, parentNote); err != nil {
		uc.logger.Error("failed to note exchange link on parent",
			zap.String("parent_id", parentID), zap.String("child_id", childID), zap.Error(err))
		res.ParentErr = err.Error()
	} else {
		res.ParentNoted = true
	}

	childNote := &model.OrderNote{
		ID:        uuid.New().String(),
		OrderID:   childID,
		Note:      fmt.Sprintf("%s for original order %s", exchangeType, parentID),
		CreatedAt: now,
	}
	if err := uc.orders.AddNote(ctx, childNote); err != nil {
		uc.logger.Error("failed to note exchange link on child",
			zap.String("parent_id", parentID), zap.String("child_id", childID), zap.Error(err))
		res.ChildErr = err.Error()
	} else {
		res.ChildNoted = true
	}

	return res
}

package inventory

import (
	"context"

	"github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
)

// OrderItemReader is the slice of the order repository the ledger needs for
// order-scoped restore/confirm.
type OrderItemReader interface {
	GetItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
}

// UseCase is the stock ledger: the only component allowed to mutate variant
// stock fields.
type UseCase interface {
	// CheckStock is read-only and reports every line short on stock.
	CheckStock(ctx context.Context, items []dto.StockItem) ([]dto.StockShortage, error)

	// DeductStock deducts item by item. Items deducted before a failing line
	// are not rolled back; multi-item orders should use DeductStockBatch.
	DeductStock(ctx context.Context, items []dto.StockItem, orderID string) ([]dto.DeductionResult, error)

	// DeductStockBatch commits all lines or none.
	DeductStockBatch(ctx context.Context, items []dto.StockItem, orderID string) error

	RestoreStockForOrder(ctx context.Context, orderID, reason string) error
	ConfirmStockDeduction(ctx context.Context, orderID string) error

	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.ProductVariant, error)
}

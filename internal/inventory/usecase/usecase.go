package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omnistore/fulfillment-service/internal/inventory"
	"github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/pkg/cache"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type stockLedger struct {
	repo   inventory.Repository
	orders inventory.OrderItemReader
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewStockLedger(repo inventory.Repository, orders inventory.OrderItemReader, c *cache.RedisClient, log logger.ZapLogger) inventory.UseCase {
	return &stockLedger{
		repo:   repo,
		orders: orders,
		cache:  c,
		logger: log,
	}
}

func (uc *stockLedger) CheckStock(ctx context.Context, items []dto.StockItem) ([]dto.StockShortage, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.VariantID)
	}

	variants, err := uc.repo.BatchGetVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.ProductVariant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	var shortages []dto.StockShortage
	for _, it := range items {
		v, ok := byID[it.VariantID]
		if !ok {
			shortages = append(shortages, dto.StockShortage{
				VariantID: it.VariantID, Requested: it.Quantity, Available: 0,
			})
			continue
		}
		if available := v.AvailableStock(); available < it.Quantity {
			shortages = append(shortages, dto.StockShortage{
				VariantID: it.VariantID, SKU: v.SKU, Requested: it.Quantity, Available: available,
			})
		}
	}
	return shortages, nil
}

// DeductStock walks the items one atomic round trip at a time. A failure
// mid-list leaves the earlier deductions in place; callers needing strict
// atomicity across items must use DeductStockBatch.
func (uc *stockLedger) DeductStock(ctx context.Context, items []dto.StockItem, orderID string) ([]dto.DeductionResult, error) {
	results := make([]dto.DeductionResult, 0, len(items))
	for _, it := range items {
		res, ok, err := uc.repo.DeductIfSufficient(ctx, it.VariantID, it.Quantity)
		if err != nil {
			return results, err
		}
		if !ok {
			return results, &inventory.InsufficientStockError{
				SKU:       res.SKU,
				Requested: it.Quantity,
				Available: res.AvailableStock,
			}
		}
		results = append(results, *res)
		uc.logMovement(ctx, it.VariantID, "sale", -it.Quantity, res.StockBefore, res.StockAfter, "order", orderID, "stock deducted for order")
	}
	return results, nil
}

func (uc *stockLedger) DeductStockBatch(ctx context.Context, items []dto.StockItem, orderID string) error {
	ok, shortages, err := uc.repo.DeductBatch(ctx, items, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return &inventory.BatchInsufficientStockError{Shortages: shortages}
	}
	return nil
}

// RestoreStockForOrder puts every committed line of the order back on the
// shelf. A failing line is logged and skipped: cancellation and return flows
// must not be blocked by one bad row.
func (uc *stockLedger) RestoreStockForOrder(ctx context.Context, orderID, reason string) error {
	items, err := uc.orders.GetItems(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			continue // returned lines never deducted stock
		}
		res, err := uc.repo.RestoreForItem(ctx, it.VariantID, it.Quantity)
		if err != nil {
			uc.logger.Error("failed to restore stock for item",
				zap.String("order_id", orderID),
				zap.String("variant_id", it.VariantID),
				zap.Int("quantity", it.Quantity),
				zap.Error(err))
			continue
		}
		uc.logMovement(ctx, it.VariantID, "restore", it.Quantity, res.StockBefore, res.StockAfter, "order", orderID, reason)
	}
	return nil
}

// ConfirmStockDeduction consumes the reservations of an order: reserved_stock
// drops, current_stock is untouched because it already reflects the deduction.
func (uc *stockLedger) ConfirmStockDeduction(ctx context.Context, orderID string) error {
	items, err := uc.orders.GetItems(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if err := uc.repo.ConfirmForItem(ctx, it.VariantID, it.Quantity); err != nil {
			return fmt.Errorf("confirm deduction for variant %s: %w", it.VariantID, err)
		}
	}
	return nil
}

func (uc *stockLedger) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.ProductVariant, error) {
	if uc.cache != nil {
		lockKey := fmt.Sprintf(cache.KeyStockLock, input.VariantID)
		lockValue := uuid.New().String()

		acquired := false
		for i := 0; i < 3; i++ {
			ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, cache.TTLStockLock)
			if err != nil {
				uc.logger.Error("failed to acquire stock lock", zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if !acquired {
			return nil, fmt.Errorf("stock for variant %s is busy, try again later", input.VariantID)
		}
		defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)
	}

	v, err := uc.repo.GetVariant(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &model.NotFoundError{Entity: "product variant", ID: input.VariantID}
	}

	before := v.CurrentStock
	after := before + input.Quantity
	if after < 0 {
		return nil, &model.ValidationError{
			Field:  "quantity",
			Reason: fmt.Sprintf("adjustment would leave stock negative (%d)", after),
		}
	}

	v.CurrentStock = after
	v.UpdatedAt = time.Now()

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		VariantID:      input.VariantID,
		MovementType:   input.MovementType,
		QuantityChange: input.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Notes:          input.Reason,
		CreatedAt:      v.UpdatedAt,
	}
	if err := uc.repo.AdjustWithMovement(ctx, v, movement); err != nil {
		return nil, err
	}
	return v, nil
}

func (uc *stockLedger) logMovement(ctx context.Context, variantID, movementType string, change, before, after int, refType, refID, notes string) {
	m := &model.StockMovement{
		ID:             uuid.New().String(),
		VariantID:      variantID,
		MovementType:   movementType,
		QuantityChange: change,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceType:  &refType,
		ReferenceID:    &refID,
		Notes:          notes,
		CreatedAt:      time.Now(),
	}
	if err := uc.repo.LogMovement(ctx, m); err != nil {
		uc.logger.Warn("failed to log stock movement",
			zap.String("variant_id", variantID), zap.Error(err))
	}
}

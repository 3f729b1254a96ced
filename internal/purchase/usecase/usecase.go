package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omnistore/fulfillment-service/internal/inventory"
	invdto "github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"github.com/omnistore/fulfillment-service/internal/purchase"
	"github.com/omnistore/fulfillment-service/internal/purchase/dto"
	"go.uber.org/zap"
)

type purchaseUseCase struct {
	repo   purchase.Repository
	stock  inventory.UseCase
	logger logger.ZapLogger
}

func NewPurchaseUseCase(repo purchase.Repository, stock inventory.UseCase, log logger.ZapLogger) purchase.UseCase {
	return &purchaseUseCase{
		repo:   repo,
		stock:  stock,
		logger: log,
	}
}

func (uc *purchaseUseCase) CreateTransaction(ctx context.Context, input *dto.CreateTransactionInput) (*model.InventoryTransaction, error) {
	switch input.Type {
	case model.TransactionPurchase, model.TransactionPurchaseReturn,
		model.TransactionDamage, model.TransactionAdjustment:
	default:
		return nil, &model.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", input.Type)}
	}
	if len(input.Items) == 0 {
		return nil, &model.ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	if input.Type == model.TransactionPurchaseReturn {
		if err := uc.ValidatePurchaseReturn(ctx, &dto.ReturnRequest{
			ReferenceTransactionID: input.ReferenceTransactionID,
			Items:                  input.Items,
		}); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	tx := &model.InventoryTransaction{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Type:      input.Type,
		Status:    model.TransactionPending,
	}
	if input.ReferenceTransactionID != "" {
		tx.ReferenceTransactionID = &input.ReferenceTransactionID
	}
	if input.VendorID != "" {
		tx.VendorID = &input.VendorID
	}
	for _, it := range input.Items {
		tx.Items = append(tx.Items, model.InventoryTransactionItem{
			ID:            uuid.New().String(),
			TransactionID: tx.ID,
			VariantID:     it.VariantID,
			Quantity:      it.Quantity,
			UnitCost:      it.UnitCost,
		})
	}

	if err := uc.repo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ValidatePurchaseReturn runs the return ledger checks in order, failing
// fast. Only approved prior returns count against the returnable quantity:
// pending ones would double-block and rejected ones would under-block.
func (uc *purchaseUseCase) ValidatePurchaseReturn(ctx context.Context, req *dto.ReturnRequest) error {
	if req.ReferenceTransactionID == "" {
		return &purchase.MissingReferenceError{}
	}

	orig, err := uc.repo.GetByID(ctx, req.ReferenceTransactionID)
	if err != nil {
		return err
	}
	if orig == nil {
		return &purchase.InvalidReferenceError{ReferenceID: req.ReferenceTransactionID}
	}
	if orig.Type != model.TransactionPurchase {
		return &purchase.InvalidReferenceTypeError{ReferenceID: orig.ID, Type: string(orig.Type)}
	}

	origItems, err := uc.repo.GetItems(ctx, orig.ID)
	if err != nil {
		return err
	}
	originalQty := map[string]int{}
	for _, it := range origItems {
		originalQty[it.VariantID] += abs(it.Quantity)
	}

	priorReturns, err := uc.repo.ListApprovedReturns(ctx, orig.ID)
	if err != nil {
		return err
	}
	alreadyReturned := map[string]int{}
	for _, ret := range priorReturns {
		for _, it := range ret.Items {
			alreadyReturned[it.VariantID] += abs(it.Quantity)
		}
	}

	var violations []purchase.ReturnViolation
	for _, line := range req.Items {
		requested := abs(line.Quantity)
		original, purchased := originalQty[line.VariantID]
		if !purchased {
			violations = append(violations, purchase.ReturnViolation{
				VariantID: line.VariantID, Requested: requested, MaxReturnable: 0,
			})
			continue
		}
		maxReturnable := original - alreadyReturned[line.VariantID]
		if requested > maxReturnable {
			violations = append(violations, purchase.ReturnViolation{
				VariantID: line.VariantID, Requested: requested, MaxReturnable: maxReturnable,
			})
		}
	}
	if len(violations) > 0 {
		return &purchase.ReturnQuantityExceededError{Violations: violations}
	}
	return nil
}

func (uc *purchaseUseCase) ApproveTransaction(ctx context.Context, id string) (*model.InventoryTransaction, error) {
	tx, err := uc.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	// Revalidate returns at approval time: another return may have been
	// approved since this one was created.
	if tx.Type == model.TransactionPurchaseReturn {
		ref := ""
		if tx.ReferenceTransactionID != nil {
			ref = *tx.ReferenceTransactionID
		}
		req := &dto.ReturnRequest{ReferenceTransactionID: ref}
		for _, it := range tx.Items {
			req.Items = append(req.Items, dto.TransactionItemInput{
				VariantID: it.VariantID, Quantity: it.Quantity, UnitCost: it.UnitCost,
			})
		}
		if err := uc.ValidatePurchaseReturn(ctx, req); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.UpdateStatus(ctx, tx.ID, model.TransactionApproved); err != nil {
		return nil, err
	}
	tx.Status = model.TransactionApproved

	for _, it := range tx.Items {
		change := stockChange(tx.Type, it.Quantity)
		if change == 0 {
			continue
		}
		_, err := uc.stock.AdjustStock(ctx, &invdto.AdjustStockInput{
			VariantID:    it.VariantID,
			MovementType: string(tx.Type),
			Quantity:     change,
			Reason:       fmt.Sprintf("transaction %s approved", tx.ID),
		})
		if err != nil {
			uc.logger.Error("failed to apply stock effect of approved transaction",
				zap.String("transaction_id", tx.ID),
				zap.String("variant_id", it.VariantID),
				zap.Error(err))
			return tx, fmt.Errorf("apply stock for variant %s: %w", it.VariantID, err)
		}
	}
	return tx, nil
}

func (uc *purchaseUseCase) RejectTransaction(ctx context.Context, id string) (*model.InventoryTransaction, error) {
	tx, err := uc.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, tx.ID, model.TransactionRejected); err != nil {
		return nil, err
	}
	tx.Status = model.TransactionRejected
	return tx, nil
}

func (uc *purchaseUseCase) loadPending(ctx context.Context, id string) (*model.InventoryTransaction, error) {
	tx, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, &model.NotFoundError{Entity: "inventory transaction", ID: id}
	}
	if tx.Status != model.TransactionPending {
		return nil, &model.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("transaction %s is %s, only pending transactions can be decided", id, tx.Status),
		}
	}
	if len(tx.Items) == 0 {
		items, err := uc.repo.GetItems(ctx, id)
		if err != nil {
			return nil, err
		}
		tx.Items = items
	}
	return tx, nil
}

// stockChange maps a transaction type to its signed effect on current stock.
func stockChange(t model.TransactionType, qty int) int {
	switch t {
	case model.TransactionPurchase:
		return abs(qty)
	case model.TransactionPurchaseReturn, model.TransactionDamage:
		return -abs(qty)
	case model.TransactionAdjustment:
		return qty
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

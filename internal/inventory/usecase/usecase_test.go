package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/omnistore/fulfillment-service/internal/inventory"
	"github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
)

type fakeRepo struct {
	variants    map[string]*model.ProductVariant
	movements   []model.StockMovement
	failRestore map[string]bool
}

func newFakeRepo(variants ...*model.ProductVariant) *fakeRepo {
	r := &fakeRepo{variants: map[string]*model.ProductVariant{}, failRestore: map[string]bool{}}
	for _, v := range variants {
		r.variants[v.ID] = v
	}
	return r
}

func (r *fakeRepo) GetVariant(_ context.Context, id string) (*model.ProductVariant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *fakeRepo) BatchGetVariants(_ context.Context, ids []string) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeductIfSufficient(_ context.Context, id string, qty int) (*dto.DeductionResult, bool, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, false, &model.NotFoundError{Entity: "product variant", ID: id}
	}
	if v.AvailableStock() < qty {
		return &dto.DeductionResult{
			VariantID: id, SKU: v.SKU,
			StockBefore: v.CurrentStock, StockAfter: v.CurrentStock,
			ReservedBefore: v.ReservedStock, ReservedAfter: v.ReservedStock,
			AvailableStock: v.AvailableStock(),
		}, false, nil
	}
	res := &dto.DeductionResult{
		VariantID: id, SKU: v.SKU,
		StockBefore: v.CurrentStock, ReservedBefore: v.ReservedStock,
	}
	v.CurrentStock -= qty
	v.ReservedStock += qty
	res.StockAfter = v.CurrentStock
	res.ReservedAfter = v.ReservedStock
	res.AvailableStock = v.AvailableStock()
	return res, true, nil
}

func (r *fakeRepo) DeductBatch(ctx context.Context, items []dto.StockItem, _ string) (bool, []dto.StockShortage, error) {
	var shortages []dto.StockShortage
	for _, it := range items {
		v, ok := r.variants[it.VariantID]
		if !ok {
			shortages = append(shortages, dto.StockShortage{VariantID: it.VariantID, Requested: it.Quantity})
			continue
		}
		if v.AvailableStock() < it.Quantity {
			shortages = append(shortages, dto.StockShortage{
				VariantID: it.VariantID, SKU: v.SKU, Requested: it.Quantity, Available: v.AvailableStock(),
			})
		}
	}
	if len(shortages) > 0 {
		return false, shortages, nil
	}
	for _, it := range items {
		if _, _, err := r.DeductIfSufficient(ctx, it.VariantID, it.Quantity); err != nil {
			return false, nil, err
		}
	}
	return true, nil, nil
}

func (r *fakeRepo) RestoreForItem(_ context.Context, id string, qty int) (*dto.DeductionResult, error) {
	if r.failRestore[id] {
		return nil, fmt.Errorf("restore failed for %s", id)
	}
	v, ok := r.variants[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "product variant", ID: id}
	}
	res := &dto.DeductionResult{VariantID: id, SKU: v.SKU, StockBefore: v.CurrentStock, ReservedBefore: v.ReservedStock}
	v.CurrentStock += qty
	v.ReservedStock -= qty
	if v.ReservedStock < 0 {
		v.ReservedStock = 0
	}
	res.StockAfter = v.CurrentStock
	res.ReservedAfter = v.ReservedStock
	res.AvailableStock = v.AvailableStock()
	return res, nil
}

func (r *fakeRepo) ConfirmForItem(_ context.Context, id string, qty int) error {
	v, ok := r.variants[id]
	if !ok {
		return &model.NotFoundError{Entity: "product variant", ID: id}
	}
	v.ReservedStock -= qty
	if v.ReservedStock < 0 {
		v.ReservedStock = 0
	}
	return nil
}

func (r *fakeRepo) LogMovement(_ context.Context, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeRepo) AdjustWithMovement(_ context.Context, v *model.ProductVariant, m *model.StockMovement) error {
	cp := *v
	r.variants[v.ID] = &cp
	r.movements = append(r.movements, *m)
	return nil
}

type fakeOrderItems struct {
	items map[string][]model.OrderItem
}

func (f *fakeOrderItems) GetItems(_ context.Context, orderID string) ([]model.OrderItem, error) {
	return f.items[orderID], nil
}

func variant(id, sku string, current, reserved int) *model.ProductVariant {
	return &model.ProductVariant{
		BaseModel:     model.BaseModel{ID: id},
		SKU:           sku,
		CurrentStock:  current,
		ReservedStock: reserved,
	}
}

func newLedger(repo *fakeRepo, orders *fakeOrderItems) inventory.UseCase {
	if orders == nil {
		orders = &fakeOrderItems{items: map[string][]model.OrderItem{}}
	}
	return NewStockLedger(repo, orders, nil, logger.NewNop())
}

func TestCheckStockReportsEveryShortLine(t *testing.T) {
	repo := newFakeRepo(
		variant("a", "SKU-A", 10, 2),
		variant("b", "SKU-B", 3, 3),
	)
	uc := newLedger(repo, nil)

	shortages, err := uc.CheckStock(context.Background(), []dto.StockItem{
		{VariantID: "a", Quantity: 9},
		{VariantID: "b", Quantity: 1},
		{VariantID: "missing", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shortages) != 3 {
		t.Fatalf("shortages = %v, want 3 lines", shortages)
	}
	if shortages[0].VariantID != "a" || shortages[0].Available != 8 {
		t.Errorf("line a: %+v", shortages[0])
	}
	if shortages[1].VariantID != "b" || shortages[1].Available != 0 {
		t.Errorf("line b: %+v", shortages[1])
	}
	// Read-only: nothing moved.
	if repo.variants["a"].CurrentStock != 10 || repo.variants["b"].CurrentStock != 3 {
		t.Fatalf("CheckStock mutated stock")
	}
}

func TestDeductStockStopsAtFirstShortageWithoutRollback(t *testing.T) {
	repo := newFakeRepo(
		variant("a", "SKU-A", 5, 0),
		variant("b", "SKU-B", 0, 0),
		variant("c", "SKU-C", 5, 0),
	)
	uc := newLedger(repo, nil)

	results, err := uc.DeductStock(context.Background(), []dto.StockItem{
		{VariantID: "a", Quantity: 5},
		{VariantID: "b", Quantity: 1},
		{VariantID: "c", Quantity: 1},
	}, "order-1")

	var insufficient *inventory.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.SKU != "SKU-B" || insufficient.Requested != 1 || insufficient.Available != 0 {
		t.Fatalf("error detail = %+v", insufficient)
	}
	if len(results) != 1 {
		t.Fatalf("results = %v, want one committed line", results)
	}
	// Known limitation: the earlier deduction stays.
	if repo.variants["a"].CurrentStock != 0 || repo.variants["a"].ReservedStock != 5 {
		t.Fatalf("line a should remain deducted, got %+v", repo.variants["a"])
	}
	// The line after the failure is untouched.
	if repo.variants["c"].CurrentStock != 5 {
		t.Fatalf("line c should be untouched, got %+v", repo.variants["c"])
	}
}

func TestDeductStockBatchIsAllOrNothing(t *testing.T) {
	repo := newFakeRepo(
		variant("a", "SKU-A", 5, 0),
		variant("b", "SKU-B", 0, 0),
	)
	uc := newLedger(repo, nil)

	err := uc.DeductStockBatch(context.Background(), []dto.StockItem{
		{VariantID: "a", Quantity: 5},
		{VariantID: "b", Quantity: 1},
	}, "order-1")

	var batchErr *inventory.BatchInsufficientStockError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchInsufficientStockError, got %v", err)
	}
	if len(batchErr.Shortages) != 1 || batchErr.Shortages[0].SKU != "SKU-B" {
		t.Fatalf("shortages = %+v, want SKU-B", batchErr.Shortages)
	}
	if repo.variants["a"].CurrentStock != 5 || repo.variants["a"].ReservedStock != 0 {
		t.Fatalf("line a must be unchanged, got %+v", repo.variants["a"])
	}

	if err := uc.DeductStockBatch(context.Background(), []dto.StockItem{
		{VariantID: "a", Quantity: 5},
	}, "order-2"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if repo.variants["a"].CurrentStock != 0 || repo.variants["a"].ReservedStock != 5 {
		t.Fatalf("line a should be deducted, got %+v", repo.variants["a"])
	}
}

func TestRestoreStockForOrderContinuesPastFailures(t *testing.T) {
	repo := newFakeRepo(
		variant("a", "SKU-A", 0, 5),
		variant("b", "SKU-B", 0, 2),
		variant("c", "SKU-C", 0, 1),
	)
	repo.failRestore["b"] = true
	orders := &fakeOrderItems{items: map[string][]model.OrderItem{
		"order-1": {
			{VariantID: "a", Quantity: 5},
			{VariantID: "b", Quantity: 2},
			{VariantID: "c", Quantity: 1},
			{VariantID: "a", Quantity: -3}, // returned line, never deducted
		},
	}}
	uc := newLedger(repo, orders)

	if err := uc.RestoreStockForOrder(context.Background(), "order-1", "cancelled"); err != nil {
		t.Fatalf("restore must not fail on a bad row: %v", err)
	}
	if repo.variants["a"].CurrentStock != 5 || repo.variants["a"].ReservedStock != 0 {
		t.Errorf("line a not restored: %+v", repo.variants["a"])
	}
	if repo.variants["b"].CurrentStock != 0 || repo.variants["b"].ReservedStock != 2 {
		t.Errorf("failed line b must stay put: %+v", repo.variants["b"])
	}
	if repo.variants["c"].CurrentStock != 1 {
		t.Errorf("line c not restored: %+v", repo.variants["c"])
	}
}

func TestConfirmStockDeductionDropsReservationsOnly(t *testing.T) {
	repo := newFakeRepo(variant("a", "SKU-A", 5, 5))
	orders := &fakeOrderItems{items: map[string][]model.OrderItem{
		"order-1": {{VariantID: "a", Quantity: 5}},
	}}
	uc := newLedger(repo, orders)

	if err := uc.ConfirmStockDeduction(context.Background(), "order-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.variants["a"].CurrentStock != 5 {
		t.Errorf("current stock must not change on confirm: %+v", repo.variants["a"])
	}
	if repo.variants["a"].ReservedStock != 0 {
		t.Errorf("reservation not consumed: %+v", repo.variants["a"])
	}
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	repo := newFakeRepo(variant("a", "SKU-A", 3, 0))
	uc := newLedger(repo, nil)

	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		VariantID: "a", MovementType: "damage", Quantity: -4, Reason: "broken in transit",
	})
	var validation *model.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.variants["a"].CurrentStock != 3 {
		t.Fatalf("rejected adjustment must not mutate stock")
	}

	v, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		VariantID: "a", MovementType: "damage", Quantity: -3, Reason: "broken in transit",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.CurrentStock != 0 {
		t.Fatalf("current stock = %d, want 0", v.CurrentStock)
	}
	if len(repo.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(repo.movements))
	}
	m := repo.movements[0]
	if m.QuantityBefore != 3 || m.QuantityAfter != 0 || m.QuantityChange != -3 {
		t.Fatalf("movement audit = %+v", m)
	}
}

func TestAdjustStockUnknownVariant(t *testing.T) {
	uc := newLedger(newFakeRepo(), nil)
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		VariantID: "ghost", MovementType: "correction", Quantity: 1, Reason: "recount",
	})
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

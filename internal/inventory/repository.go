package inventory

import (
	"context"

	"github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
)

type Repository interface {
	GetVariant(ctx context.Context, variantID string) (*model.ProductVariant, error)
	BatchGetVariants(ctx context.Context, variantIDs []string) ([]model.ProductVariant, error)

	// DeductIfSufficient is the single atomic "read, verify sufficiency,
	// write, return before/after" round trip per variant. ok=false with a nil
	// error means the guard rejected the write; res then carries the current
	// counts.
	DeductIfSufficient(ctx context.Context, variantID string, qty int) (res *dto.DeductionResult, ok bool, err error)

	// DeductBatch commits every line or none. Shortages list every failing
	// line when ok=false.
	DeductBatch(ctx context.Context, items []dto.StockItem, orderID string) (ok bool, shortages []dto.StockShortage, err error)

	// RestoreForItem moves a reserved quantity back to shelf:
	// current_stock += qty, reserved_stock -= qty. Returns the before/after
	// counts of the write.
	RestoreForItem(ctx context.Context, variantID string, qty int) (*dto.DeductionResult, error)

	// ConfirmForItem consumes a reservation: reserved_stock -= qty only,
	// current_stock already reflects the deduction.
	ConfirmForItem(ctx context.Context, variantID string, qty int) error

	LogMovement(ctx context.Context, m *model.StockMovement) error
	AdjustWithMovement(ctx context.Context, v *model.ProductVariant, m *model.StockMovement) error
}

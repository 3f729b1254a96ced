package purchase

import (
	"context"

	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/purchase/dto"
)

// UseCase covers the purchase-side transaction flows. Transactions follow a
// maker-checker workflow: creation leaves them pending, a second actor
// approves before stock takes effect.
type UseCase interface {
	CreateTransaction(ctx context.Context, input *dto.CreateTransactionInput) (*model.InventoryTransaction, error)

	// ValidatePurchaseReturn enforces the return ledger invariant: summed
	// approved returns per variant never exceed the originally purchased
	// quantity.
	ValidatePurchaseReturn(ctx context.Context, req *dto.ReturnRequest) error

	ApproveTransaction(ctx context.Context, id string) (*model.InventoryTransaction, error)
	RejectTransaction(ctx context.Context, id string) (*model.InventoryTransaction, error)
}

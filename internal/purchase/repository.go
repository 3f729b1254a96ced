package purchase

import (
	"context"

	"github.com/omnistore/fulfillment-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, tx *model.InventoryTransaction) error
	GetByID(ctx context.Context, id string) (*model.InventoryTransaction, error)
	GetItems(ctx context.Context, transactionID string) ([]model.InventoryTransactionItem, error)
	UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error

	// ListApprovedReturns loads every approved purchase_return transaction
	// referencing the given original purchase, items included.
	ListApprovedReturns(ctx context.Context, referenceTransactionID string) ([]model.InventoryTransaction, error)
}

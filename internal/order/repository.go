package order

import (
	"context"

	"github.com/omnistore/fulfillment-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetItems(ctx context.Context, orderID string) ([]model.OrderItem, error)

	// UpdateStatus persists the new status together with the transition
	// fields (rider, courier, cancel reason) in one write.
	UpdateStatus(ctx context.Context, o *model.Order) error

	ListChildren(ctx context.Context, parentID string) ([]model.Order, error)
	AddNote(ctx context.Context, note *model.OrderNote) error
}

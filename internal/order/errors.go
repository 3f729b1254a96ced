package order

import (
	"fmt"

	"github.com/omnistore/fulfillment-service/internal/model"
)

type InvalidTransitionError struct {
	Current model.OrderStatus
	Next    model.OrderStatus
	Allowed []model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %q to %q, allowed: %v", e.Current, e.Next, e.Allowed)
}

type InvalidTransitionForChannelError struct {
	Status  model.OrderStatus
	Channel model.FulfillmentType
}

func (e *InvalidTransitionForChannelError) Error() string {
	return fmt.Sprintf("status %q is not reachable for fulfillment type %q", e.Status, e.Channel)
}

type PrerequisiteError struct {
	Status model.OrderStatus
	Field  string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("entering %q requires %q", e.Status, e.Field)
}

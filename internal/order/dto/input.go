package dto

import "github.com/omnistore/fulfillment-service/internal/model"

type CreateOrderInput struct {
	Source          string
	FulfillmentType model.FulfillmentType
	CustomerID      string
	ParentOrderID   string
	Items           []CreateOrderItemInput
}

type CreateOrderItemInput struct {
	VariantID string
	Quantity  int
	UnitPrice float64
}

type TransitionInput struct {
	OrderID   string
	NewStatus model.OrderStatus
	Update    TransitionUpdate
}

// TransitionUpdate carries the fields a target status may require. Empty
// strings mean "not supplied"; the state machine falls back to values already
// persisted on the order where that makes sense.
type TransitionUpdate struct {
	AssignedRiderID string
	CourierName     string
	TrackingNumber  string
	Reason          string
}

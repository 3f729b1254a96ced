package order

import (
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/order/dto"
)

// Transition graphs, one per fulfillment type. Built once, never mutated.
// The channels differ structurally (rider hand-off vs. courier hand-off vs.
// point-of-sale) so they stay separate instead of one graph with branches.
var transitionGraphs = map[model.FulfillmentType]map[model.OrderStatus][]model.OrderStatus{
	model.FulfillmentInsideChannel: {
		model.StatusIntake:          {model.StatusProcessing, model.StatusRejected, model.StatusCancelled},
		model.StatusProcessing:      {model.StatusPacked, model.StatusCancelled},
		model.StatusPacked:          {model.StatusAssigned, model.StatusCancelled},
		model.StatusAssigned:        {model.StatusOutForDelivery, model.StatusPacked, model.StatusCancelled},
		model.StatusOutForDelivery:  {model.StatusDelivered, model.StatusAssigned, model.StatusCancelled},
		model.StatusDelivered:       {model.StatusReturnInitiated},
		model.StatusReturnInitiated: {model.StatusReturned, model.StatusDelivered},
		model.StatusReturned:        {},
		model.StatusCancelled:       {},
		model.StatusRejected:        {},
	},
	model.FulfillmentOutsideChannel: {
		model.StatusIntake:            {model.StatusProcessing, model.StatusRejected, model.StatusCancelled},
		model.StatusProcessing:        {model.StatusPacked, model.StatusCancelled},
		model.StatusPacked:            {model.StatusHandoverToCourier, model.StatusCancelled},
		model.StatusHandoverToCourier: {model.StatusDelivered, model.StatusCancelled},
		model.StatusDelivered:         {model.StatusReturnInitiated},
		model.StatusReturnInitiated:   {model.StatusReturned, model.StatusDelivered},
		model.StatusReturned:          {},
		model.StatusCancelled:         {},
		model.StatusRejected:          {},
	},
	model.FulfillmentStore: {
		model.StatusStoreSale:       {model.StatusReturnInitiated, model.StatusCancelled},
		model.StatusReturnInitiated: {model.StatusReturned},
		model.StatusReturned:        {},
		model.StatusCancelled:       {},
	},
}

// Statuses that only exist on one channel. A mismatch here is a channel
// leakage, reported separately from a plain bad transition.
var exclusiveChannel = map[model.OrderStatus]model.FulfillmentType{
	model.StatusAssigned:          model.FulfillmentInsideChannel,
	model.StatusOutForDelivery:    model.FulfillmentInsideChannel,
	model.StatusHandoverToCourier: model.FulfillmentOutsideChannel,
	model.StatusStoreSale:         model.FulfillmentStore,
}

var terminalStatuses = map[model.OrderStatus]bool{
	model.StatusCancelled: true,
	model.StatusRejected:  true,
	model.StatusReturned:  true,
}

func AllowedNextStatuses(status model.OrderStatus, ft model.FulfillmentType) []model.OrderStatus {
	graph, ok := transitionGraphs[ft]
	if !ok {
		return nil
	}
	next := graph[status]
	out := make([]model.OrderStatus, len(next))
	copy(out, next)
	return out
}

func IsValidTransition(current, next model.OrderStatus, ft model.FulfillmentType) bool {
	for _, s := range transitionGraphs[ft][current] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transition exists. Delivered is
// not terminal: it can still move to return_initiated.
func IsTerminalStatus(status model.OrderStatus) bool {
	return terminalStatuses[status]
}

// InitialStatus picks the entry node: point-of-sale orders are sold on the
// spot and start at store_sale, everything else starts at intake.
func InitialStatus(source string, ft model.FulfillmentType) model.OrderStatus {
	if source == "store" || ft == model.FulfillmentStore {
		return model.StatusStoreSale
	}
	return model.StatusIntake
}

// ValidateTransition checks, in order and failing fast: graph membership,
// channel leakage, then field prerequisites of the target status. It performs
// no I/O and mutates nothing; the caller persists the status and invokes the
// stock ledger separately for stock-affecting transitions.
func ValidateTransition(o *model.Order, next model.OrderStatus, upd dto.TransitionUpdate) error {
	if !IsValidTransition(o.Status, next, o.FulfillmentType) {
		if ch, ok := exclusiveChannel[next]; ok && ch != o.FulfillmentType {
			return &InvalidTransitionForChannelError{Status: next, Channel: o.FulfillmentType}
		}
		return &InvalidTransitionError{
			Current: o.Status,
			Next:    next,
			Allowed: AllowedNextStatuses(o.Status, o.FulfillmentType),
		}
	}

	switch next {
	case model.StatusAssigned:
		if upd.AssignedRiderID == "" && strPtrEmpty(o.AssignedRiderID) {
			return &PrerequisiteError{Status: next, Field: "assigned_rider_id"}
		}
	case model.StatusHandoverToCourier:
		if upd.CourierName == "" && strPtrEmpty(o.CourierName) {
			return &PrerequisiteError{Status: next, Field: "courier_name"}
		}
		if upd.TrackingNumber == "" && strPtrEmpty(o.TrackingNumber) {
			return &PrerequisiteError{Status: next, Field: "tracking_number"}
		}
	case model.StatusCancelled, model.StatusRejected, model.StatusReturnInitiated:
		if upd.Reason == "" {
			return &PrerequisiteError{Status: next, Field: "reason"}
		}
	}
	return nil
}

func strPtrEmpty(s *string) bool {
	return s == nil || *s == ""
}

package order

import "github.com/omnistore/fulfillment-service/internal/model"

// StatusAction is presentation metadata only. Nothing in the transition logic
// reads this table.
type StatusAction struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var statusActions = map[model.OrderStatus]StatusAction{
	model.StatusIntake:            {Label: "Intake", Icon: "inbox", Color: "gray"},
	model.StatusProcessing:        {Label: "Processing", Icon: "loader", Color: "blue"},
	model.StatusPacked:            {Label: "Packed", Icon: "package", Color: "blue"},
	model.StatusAssigned:          {Label: "Rider Assigned", Icon: "user", Color: "indigo"},
	model.StatusOutForDelivery:    {Label: "Out for Delivery", Icon: "truck", Color: "orange"},
	model.StatusHandoverToCourier: {Label: "Handover to Courier", Icon: "send", Color: "orange"},
	model.StatusDelivered:         {Label: "Delivered", Icon: "check-circle", Color: "green"},
	model.StatusStoreSale:         {Label: "Store Sale", Icon: "shopping-bag", Color: "green"},
	model.StatusReturnInitiated:   {Label: "Return Initiated", Icon: "rotate-ccw", Color: "yellow"},
	model.StatusReturned:          {Label: "Returned", Icon: "corner-up-left", Color: "yellow"},
	model.StatusCancelled:         {Label: "Cancelled", Icon: "x-circle", Color: "red"},
	model.StatusRejected:          {Label: "Rejected", Icon: "slash", Color: "red"},
}

func ActionFor(status model.OrderStatus) (StatusAction, bool) {
	a, ok := statusActions[status]
	return a, ok
}

package model

import "time"

type FulfillmentType string

const (
	FulfillmentInsideChannel  FulfillmentType = "inside_channel"
	FulfillmentOutsideChannel FulfillmentType = "outside_channel"
	FulfillmentStore          FulfillmentType = "store"
)

type OrderStatus string

const (
	StatusIntake            OrderStatus = "intake"
	StatusProcessing        OrderStatus = "processing"
	StatusPacked            OrderStatus = "packed"
	StatusAssigned          OrderStatus = "assigned"
	StatusOutForDelivery    OrderStatus = "out_for_delivery"
	StatusDelivered         OrderStatus = "delivered"
	StatusHandoverToCourier OrderStatus = "handover_to_courier"
	StatusStoreSale         OrderStatus = "store_sale"
	StatusReturnInitiated   OrderStatus = "return_initiated"
	StatusReturned          OrderStatus = "returned"
	StatusCancelled         OrderStatus = "cancelled"
	StatusRejected          OrderStatus = "rejected"
)

type Order struct {
	BaseModel
	Source          string          `db:"source" json:"source"`
	FulfillmentType FulfillmentType `db:"fulfillment_type" json:"fulfillment_type"`
	Status          OrderStatus     `db:"status" json:"status"`
	ParentOrderID   *string         `db:"parent_order_id" json:"parent_order_id"`
	CustomerID      *string         `db:"customer_id" json:"customer_id"`
	TotalAmount     float64         `db:"total_amount" json:"total_amount"`
	AssignedRiderID *string         `db:"assigned_rider_id" json:"assigned_rider_id"`
	CourierName     *string         `db:"courier_name" json:"courier_name"`
	TrackingNumber  *string         `db:"tracking_number" json:"tracking_number"`
	CancelReason    *string         `db:"cancel_reason" json:"cancel_reason"`
	Items           []OrderItem     `db:"-" json:"items"`
}

// Quantity is signed: positive lines are sold/new items, negative lines are
// returned items on an exchange/refund child order.
type OrderItem struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	VariantID string  `db:"variant_id" json:"variant_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

type OrderNote struct {
	ID        string    `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Note      string    `db:"note" json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

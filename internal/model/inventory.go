package model

import "time"

type ProductVariant struct {
	BaseModel
	ProductID     string `db:"product_id" json:"product_id"`
	SKU           string `db:"sku" json:"sku"`
	VariantName   string `db:"variant_name" json:"variant_name"`
	CurrentStock  int    `db:"current_stock" json:"current_stock"`
	ReservedStock int    `db:"reserved_stock" json:"reserved_stock"`
	IsActive      bool   `db:"is_active" json:"is_active"`
}

func (v ProductVariant) AvailableStock() int {
	return v.CurrentStock - v.ReservedStock
}

type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	VariantID      string    `db:"variant_id" json:"variant_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type TransactionType string

const (
	TransactionPurchase       TransactionType = "purchase"
	TransactionPurchaseReturn TransactionType = "purchase_return"
	TransactionDamage         TransactionType = "damage"
	TransactionAdjustment     TransactionType = "adjustment"
)

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
	TransactionRejected TransactionStatus = "rejected"
	TransactionVoided   TransactionStatus = "voided"
)

type InventoryTransaction struct {
	BaseModel
	Type                   TransactionType            `db:"type" json:"type"`
	Status                 TransactionStatus          `db:"status" json:"status"`
	ReferenceTransactionID *string                    `db:"reference_transaction_id" json:"reference_transaction_id"`
	VendorID               *string                    `db:"vendor_id" json:"vendor_id"`
	Items                  []InventoryTransactionItem `db:"-" json:"items"`
}

type InventoryTransactionItem struct {
	ID            string  `db:"id" json:"id"`
	TransactionID string  `db:"transaction_id" json:"transaction_id"`
	VariantID     string  `db:"variant_id" json:"variant_id"`
	Quantity      int     `db:"quantity" json:"quantity"`
	UnitCost      float64 `db:"unit_cost" json:"unit_cost"`
}

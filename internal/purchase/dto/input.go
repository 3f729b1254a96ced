package dto

import "github.com/omnistore/fulfillment-service/internal/model"

type CreateTransactionInput struct {
	Type                   model.TransactionType
	ReferenceTransactionID string
	VendorID               string
	Items                  []TransactionItemInput
}

type TransactionItemInput struct {
	VariantID string  `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
}

// ReturnRequest is a purchase return to be validated against the original
// purchase and its prior approved returns.
type ReturnRequest struct {
	ReferenceTransactionID string                 `json:"reference_transaction_id"`
	Items                  []TransactionItemInput `json:"items"`
}

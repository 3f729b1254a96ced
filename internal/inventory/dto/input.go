package dto

type StockItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type AdjustStockInput struct {
	VariantID    string
	MovementType string // 'damage', 'correction', 'recount'
	Quantity     int    // signed
	Reason       string
	UserID       string
}

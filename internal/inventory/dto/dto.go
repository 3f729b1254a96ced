package dto

type StockShortage struct {
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// DeductionResult mirrors the atomic decrement-if-sufficient round trip of the
// backing store: before/after counts for both stock fields.
type DeductionResult struct {
	VariantID      string `json:"variant_id"`
	SKU            string `json:"sku"`
	StockBefore    int    `json:"stock_before"`
	StockAfter     int    `json:"stock_after"`
	ReservedBefore int    `json:"reserved_before"`
	ReservedAfter  int    `json:"reserved_after"`
	AvailableStock int    `json:"available_stock"`
}

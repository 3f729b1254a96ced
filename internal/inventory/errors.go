package inventory

import (
	"fmt"
	"strings"

	"github.com/omnistore/fulfillment-service/internal/inventory/dto"
)

type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
}

// BatchInsufficientStockError carries every failing line of an all-or-nothing
// batch deduction.
type BatchInsufficientStockError struct {
	Shortages []dto.StockShortage
}

func (e *BatchInsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: requested %d, available %d", s.SKU, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

package purchase

import (
	"fmt"
	"strings"
)

type MissingReferenceError struct{}

func (e *MissingReferenceError) Error() string {
	return "purchase return requires reference_transaction_id"
}

type InvalidReferenceError struct {
	ReferenceID string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("referenced transaction does not exist: %s", e.ReferenceID)
}

type InvalidReferenceTypeError struct {
	ReferenceID string
	Type        string
}

func (e *InvalidReferenceTypeError) Error() string {
	return fmt.Sprintf("referenced transaction %s is a %q, not a purchase", e.ReferenceID, e.Type)
}

type ReturnViolation struct {
	VariantID     string `json:"variant_id"`
	Requested     int    `json:"requested"`
	MaxReturnable int    `json:"max_returnable"`
}

// ReturnQuantityExceededError carries every violating line so a multi-line
// request can be fixed in one round trip.
type ReturnQuantityExceededError struct {
	Violations []ReturnViolation
}

func (e *ReturnQuantityExceededError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("variant %s: requested %d, max returnable %d", v.VariantID, v.Requested, v.MaxReturnable))
	}
	return "return quantity exceeded: " + strings.Join(parts, "; ")
}

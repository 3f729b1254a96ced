package exchange

import (
	"context"

	"github.com/omnistore/fulfillment-service/internal/model"
)

type ExchangeType string

const (
	// TypeRefund: the child only returns items.
	TypeRefund ExchangeType = "refund"
	// TypeExchange: the child returns items and takes new ones, paid
	// upcharges included.
	TypeExchange ExchangeType = "exchange"
)

type ChildSummary struct {
	Order         *model.Order `json:"order"`
	ReturnedItems int          `json:"returned_items"`
	NewItems      int          `json:"new_items"`
	ReturnAmount  float64      `json:"return_amount"`
	NewAmount     float64      `json:"new_amount"`
	ExchangeType  ExchangeType `json:"exchange_type,omitempty"`
}

type RelatedOrders struct {
	Order              *model.Order   `json:"order"`
	Parent             *model.Order   `json:"parent,omitempty"`
	Children           []ChildSummary `json:"children"`
	ReturnedItemsCount int            `json:"returned_items_count"`
	NewItemsCount      int            `json:"new_items_count"`
	ReturnAmount       float64        `json:"return_amount"`
	NewAmount          float64        `json:"new_amount"`
	IsFullReturn       bool           `json:"is_full_return"`
	IsPartialReturn    bool           `json:"is_partial_return"`
	HasNewItems        bool           `json:"has_new_items"`
}

// LinkResult reports each side of the relationship note independently; one
// side failing does not block or roll back the other.
type LinkResult struct {
	ParentNoted bool   `json:"parent_noted"`
	ChildNoted  bool   `json:"child_noted"`
	ParentErr   string `json:"parent_err,omitempty"`
	ChildErr    string `json:"child_err,omitempty"`
}

type UseCase interface {
	GetRelatedOrders(ctx context.Context, orderID string) (*RelatedOrders, error)
	LogExchangeLink(ctx context.Context, parentID, childID string, exchangeType ExchangeType) *LinkResult
}

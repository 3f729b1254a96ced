package dto

import (
	"github.com/omnistore/fulfillment-service/internal/hooks"
	"github.com/omnistore/fulfillment-service/internal/model"
)

type TransitionResult struct {
	Order        *model.Order        `json:"order"`
	From         model.OrderStatus   `json:"from"`
	To           model.OrderStatus   `json:"to"`
	AllowedNext  []model.OrderStatus `json:"allowed_next"`
	HookOutcomes []hooks.Outcome     `json:"hook_outcomes,omitempty"`
}

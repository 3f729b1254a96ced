package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/omnistore/fulfillment-service/internal/exchange"
	"github.com/omnistore/fulfillment-service/internal/inventory"
	invdto "github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/order"
	orderdto "github.com/omnistore/fulfillment-service/internal/order/dto"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"github.com/omnistore/fulfillment-service/internal/purchase"
	purchasedto "github.com/omnistore/fulfillment-service/internal/purchase/dto"
	"go.uber.org/zap"
)

type Handler struct {
	Orders    order.UseCase
	Stock     inventory.UseCase
	Purchases purchase.UseCase
	Exchanges exchange.UseCase
	Logger    logger.ZapLogger
}

func (h *Handler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/transition", h.transitionOrder)
	r.Get("/orders/{id}/related", h.relatedOrders)
	r.Get("/orders/{id}/actions", h.statusActions)

	r.Post("/stock/check", h.checkStock)
	r.Post("/stock/adjust", h.adjustStock)

	r.Post("/transactions", h.createTransaction)
	r.Post("/transactions/{id}/approve", h.approveTransaction)
	r.Post("/transactions/{id}/reject", h.rejectTransaction)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	var notFound *model.NotFoundError
	var validation *model.ValidationError
	var badTransition *order.InvalidTransitionError
	var badChannel *order.InvalidTransitionForChannelError
	var prerequisite *order.PrerequisiteError
	var insufficient *inventory.InsufficientStockError
	var batchInsufficient *inventory.BatchInsufficientStockError
	var missingRef *purchase.MissingReferenceError
	var badRef *purchase.InvalidReferenceError
	var badRefType *purchase.InvalidReferenceTypeError
	var exceeded *purchase.ReturnQuantityExceededError

	switch {
	case errors.As(err, &notFound):
		code = http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &missingRef),
		errors.As(err, &badRef),
		errors.As(err, &badRefType):
		code = http.StatusBadRequest
	case errors.As(err, &badTransition),
		errors.As(err, &badChannel),
		errors.As(err, &prerequisite),
		errors.As(err, &insufficient),
		errors.As(err, &batchInsufficient),
		errors.As(err, &exceeded):
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

type createOrderReq struct {
	Source          string                          `json:"source"`
	FulfillmentType model.FulfillmentType           `json:"fulfillment_type"`
	CustomerID      string                          `json:"customer_id"`
	ParentOrderID   string                          `json:"parent_order_id"`
	Items           []orderdto.CreateOrderItemInput `json:"items"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Orders.Create(r.Context(), &orderdto.CreateOrderInput{
		Source:          req.Source,
		FulfillmentType: req.FulfillmentType,
		CustomerID:      req.CustomerID,
		ParentOrderID:   req.ParentOrderID,
		Items:           req.Items,
	})
	if err != nil {
		h.Logger.Error("create order failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type transitionReq struct {
	NewStatus       model.OrderStatus `json:"new_status"`
	AssignedRiderID string            `json:"assigned_rider_id"`
	CourierName     string            `json:"courier_name"`
	TrackingNumber  string            `json:"tracking_number"`
	Reason          string            `json:"reason"`
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request) {
	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	res, err := h.Orders.Transition(r.Context(), &orderdto.TransitionInput{
		OrderID:   chi.URLParam(r, "id"),
		NewStatus: req.NewStatus,
		Update: orderdto.TransitionUpdate{
			AssignedRiderID: req.AssignedRiderID,
			CourierName:     req.CourierName,
			TrackingNumber:  req.TrackingNumber,
			Reason:          req.Reason,
		},
	})
	if err != nil {
		h.Logger.Error("transition failed",
			zap.String("order_id", chi.URLParam(r, "id")),
			zap.String("new_status", string(req.NewStatus)),
			zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) relatedOrders(w http.ResponseWriter, r *http.Request) {
	related, err := h.Exchanges.GetRelatedOrders(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, related)
}

func (h *Handler) statusActions(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	type actionEntry struct {
		Status model.OrderStatus  `json:"status"`
		Action order.StatusAction `json:"action"`
	}
	next := order.AllowedNextStatuses(o.Status, o.FulfillmentType)
	entries := make([]actionEntry, 0, len(next))
	for _, s := range next {
		if a, ok := order.ActionFor(s); ok {
			entries = append(entries, actionEntry{Status: s, Action: a})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  o.Status,
		"actions": entries,
	})
}

func (h *Handler) checkStock(w http.ResponseWriter, r *http.Request) {
	var items []invdto.StockItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	shortages, err := h.Stock.CheckStock(r.Context(), items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sufficient": len(shortages) == 0,
		"shortages":  shortages,
	})
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var input invdto.AdjustStockInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	v, err := h.Stock.AdjustStock(r.Context(), &input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createTransactionReq struct {
	Type                   model.TransactionType              `json:"type"`
	ReferenceTransactionID string                             `json:"reference_transaction_id"`
	VendorID               string                             `json:"vendor_id"`
	Items                  []purchasedto.TransactionItemInput `json:"items"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	tx, err := h.Purchases.CreateTransaction(r.Context(), &purchasedto.CreateTransactionInput{
		Type:                   req.Type,
		ReferenceTransactionID: req.ReferenceTransactionID,
		VendorID:               req.VendorID,
		Items:                  req.Items,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) approveTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Purchases.ApproveTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) rejectTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Purchases.RejectTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
